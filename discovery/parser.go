package discovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// IntrospectionError reports probe output that could not be parsed. Raw keeps
// the text that failed.
type IntrospectionError struct {
	Probe Probe
	Raw   string
	Err   error
}

func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("%v: %s probe: %v", ErrIntrospectionFailed, e.Probe, e.Err)
}

func (e *IntrospectionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrIntrospectionFailed.
func (e *IntrospectionError) Is(target error) bool {
	return target == ErrIntrospectionFailed
}

var errNoPayload = errors.New("no JSON object line in probe output")

// payloadLine returns the last line of output that looks like a JSON object.
// Probe output may be surrounded by unrelated log lines.
func payloadLine(output string) (string, bool) {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "{") && strings.HasSuffix(line, "}") {
			return line, true
		}
	}
	return "", false
}

// decode parses the probe payload into T. A payload carrying an "error" field
// is returned as probeErr with a zero T.
func decode[T any](probe Probe, output string) (value T, probeErr string, err error) {
	line, ok := payloadLine(output)
	if !ok {
		return value, "", &IntrospectionError{Probe: probe, Raw: output, Err: errNoPayload}
	}

	var envelope struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &envelope); err != nil {
		return value, "", &IntrospectionError{Probe: probe, Raw: line, Err: err}
	}
	if envelope.Error != nil {
		msg := *envelope.Error
		if msg == "" {
			msg = "unknown error"
		}
		return value, msg, nil
	}

	if err := json.Unmarshal([]byte(line), &value); err != nil {
		return value, "", &IntrospectionError{Probe: probe, Raw: line, Err: err}
	}
	return value, "", nil
}

// ParseModuleInfo parses module probe output.
func ParseModuleInfo(output string) (ModuleInfo, error) {
	info, probeErr, err := decode[ModuleInfo](ProbeModule, output)
	if err != nil {
		return ModuleInfo{}, err
	}
	if probeErr != "" {
		return ModuleInfo{}, &IntrospectionError{Probe: ProbeModule, Raw: output, Err: errors.New(probeErr)}
	}
	info.normalize()
	return info, nil
}

// ParseClassInfo parses class probe output. A probe-reported error maps to
// ErrClassNotFound.
func ParseClassInfo(output string) (ClassInfo, error) {
	info, probeErr, err := decode[ClassInfo](ProbeClass, output)
	if err != nil {
		return ClassInfo{}, err
	}
	if probeErr != "" {
		return ClassInfo{}, notFound(ErrClassNotFound, probeErr)
	}
	if info.Name == "" {
		return ClassInfo{}, &IntrospectionError{Probe: ProbeClass, Raw: output, Err: errors.New("missing class name")}
	}
	info.normalize()
	return info, nil
}

// ParseFunctionInfo parses function probe output. A probe-reported error maps
// to ErrFunctionNotFound.
func ParseFunctionInfo(output string) (FunctionInfo, error) {
	info, probeErr, err := decode[FunctionInfo](ProbeFunction, output)
	if err != nil {
		return FunctionInfo{}, err
	}
	if probeErr != "" {
		return FunctionInfo{}, notFound(ErrFunctionNotFound, probeErr)
	}
	if info.Name == "" {
		return FunctionInfo{}, &IntrospectionError{Probe: ProbeFunction, Raw: output, Err: errors.New("missing function name")}
	}
	info.normalize()
	return info, nil
}

// notFound wraps a probe-reported reason in sentinel, dropping the sentinel's
// own text when the probe already led with it.
func notFound(sentinel error, reason string) error {
	reason = strings.TrimPrefix(reason, sentinel.Error()+": ")
	return fmt.Errorf("%w: %s", sentinel, reason)
}

// ParseSubsystems parses subsystem probe output.
func ParseSubsystems(output string) ([]string, error) {
	payload, probeErr, err := decode[struct {
		Subsystems []string `json:"subsystems"`
	}](ProbeSubsystems, output)
	if err != nil {
		return nil, err
	}
	if probeErr != "" {
		return nil, &IntrospectionError{Probe: ProbeSubsystems, Raw: output, Err: errors.New(probeErr)}
	}
	return nonNil(payload.Subsystems), nil
}
