package ordering

import (
	"regexp"
	"strings"
)

var pidPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9._-]{0,31}$`)

// CanonicalPID trims and uppercases a student identifier so "stu123" and
// " STU123 " address the same student.
func CanonicalPID(raw string) (string, error) {
	pid := strings.ToUpper(strings.TrimSpace(raw))
	if pid == "" {
		return "", ValidationError{Field: "pid", Reason: "required"}
	}
	if !pidPattern.MatchString(pid) {
		return "", ValidationError{Field: "pid", Reason: "must be 1-32 letters, digits, '.', '_' or '-'"}
	}
	return pid, nil
}
