package code

import (
	"regexp"
	"strings"
)

// UnsafeMatch is one deny-list hit found by ScanUnsafe.
type UnsafeMatch struct {
	Rule string `json:"rule"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

type unsafeRule struct {
	name    string
	pattern *regexp.Regexp
}

// The deny-list is advisory. It is trivially bypassed and only produces
// warnings.
var unsafeRules = []unsafeRule{
	{"process_spawn", regexp.MustCompile(`\bsubprocess\b|\bos\.(system|popen|spawn\w*|exec\w*|fork)\s*\(`)},
	{"file_io", regexp.MustCompile(`\bopen\s*\(|\bos\.(remove|unlink|rmdir|rename|makedirs)\s*\(|\bshutil\.`)},
	{"dynamic_import", regexp.MustCompile(`\b__import__\s*\(|\bimportlib\b`)},
	{"eval_exec", regexp.MustCompile(`(^|[^\w.])(eval|exec)\s*\(`)},
}

// ScanUnsafe reports every deny-list match in code, in line order.
func ScanUnsafe(code string) []UnsafeMatch {
	var matches []UnsafeMatch
	for i, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		for _, rule := range unsafeRules {
			if rule.pattern.MatchString(line) {
				matches = append(matches, UnsafeMatch{Rule: rule.name, Line: i + 1, Text: trimmed})
			}
		}
	}
	return matches
}
