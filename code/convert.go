package code

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonwraymond/scriptbridge/runtime"
)

// exceptionMarkers are the substrings that make a command result an
// exception render. The check wins over any other reading of the string.
var exceptionMarkers = []string{"Error", "Traceback"}

var tracebackLineRE = regexp.MustCompile(`File "<bridge>", line (\d+)`)

// isExceptionRender reports whether a command-result string is a rendered
// exception rather than a return value.
func isExceptionRender(result string) bool {
	for _, marker := range exceptionMarkers {
		if strings.Contains(result, marker) {
			return true
		}
	}
	return false
}

// summarizeException returns the last non-empty line of an exception
// render followed by the preceding non-empty line when it differs.
func summarizeException(render string) string {
	var lines []string
	for _, line := range strings.Split(render, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return lines[0]
	}
	last, prev := lines[len(lines)-1], lines[len(lines)-2]
	if prev == last {
		return last
	}
	return last + "\n" + prev
}

// tracebackLine returns the innermost line number reported for executed code,
// or zero.
func tracebackLine(render string) int {
	matches := tracebackLineRE.FindAllStringSubmatch(render, -1)
	if len(matches) == 0 {
		return 0
	}
	n, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return 0
	}
	return n
}

// convertOutput turns raw host output into an ExecutionResult.
func convertOutput(out runtime.CommandOutput) ExecutionResult {
	res := ExecutionResult{LogMessages: make([]string, 0, len(out.Log))}

	var info, problems []string
	failed := false
	for _, entry := range out.Log {
		res.LogMessages = append(res.LogMessages, "["+string(entry.Type)+"] "+entry.Output)
		switch entry.Type {
		case runtime.LogWarning, runtime.LogError:
			failed = true
			problems = append(problems, entry.Output)
		default:
			info = append(info, entry.Output)
		}
	}
	res.Output = strings.Join(info, "\n")

	if out.Result != "" {
		if isExceptionRender(out.Result) {
			failed = true
			if summary := summarizeException(out.Result); summary != "" {
				problems = append(problems, summary)
			}
			res.ErrorLine = tracebackLine(out.Result)
		} else {
			res.Result = out.Result
		}
	}

	res.ErrorMessage = strings.TrimSpace(strings.Join(problems, "\n"))
	res.Success = !failed && res.ErrorMessage == ""
	return res
}
