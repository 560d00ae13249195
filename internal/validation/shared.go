package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error collects field-level validation messages. Handlers return Fields as the details map.
type Error struct {
	Fields map[string]string
}

// Error joins the messages in field order so the text is stable across runs.
func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// fieldErrors accumulates messages keyed by request field name.
type fieldErrors map[string]string

// err returns the collected messages as an *Error, or nil when none were added.
func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &Error{Fields: f}
}
