package handlers

import (
	"strconv"
	"strings"

	"github.com/vrjatclg/Time2Eat/internal/ordering"
)

// parseLimit reads an optional positive limit. Zero means the caller's
// default; the ordering service clamps large values.
func parseLimit(limitStr string) (int, error) {
	limitStr = strings.TrimSpace(limitStr)
	if limitStr == "" {
		return 0, nil
	}
	l, err := strconv.Atoi(limitStr)
	if err != nil || l < 1 {
		return 0, ordering.ValidationError{Field: "limit", Reason: "must be a positive integer"}
	}
	return l, nil
}

func parseBoolQuery(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}
