package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// InputError collects user-facing messages keyed by the offending field.
type InputError struct {
	fields map[string][]string
}

func NewInputError() *InputError {
	return &InputError{fields: make(map[string][]string)}
}

// Add attaches msg to field.
func (ie *InputError) Add(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

func (ie *InputError) Empty() bool {
	return len(ie.fields) == 0
}

// Err returns ie when it holds at least one message and nil otherwise.
func (ie *InputError) Err() error {
	if ie == nil || ie.Empty() {
		return nil
	}
	return ie
}

func (ie *InputError) Fields() map[string][]string {
	out := make(map[string][]string, len(ie.fields))
	for k, v := range ie.fields {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Messages returns the messages attached to field.
func (ie *InputError) Messages(field string) []string {
	return append([]string(nil), ie.fields[field]...)
}

func (ie *InputError) Error() string {
	keys := make([]string, 0, len(ie.fields))
	for k := range ie.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(ie.fields[k], "; ")))
	}
	return "validation: " + strings.Join(parts, ", ")
}

// AsInputError extracts an *InputError from the chain.
func AsInputError(err error) (*InputError, bool) {
	if err == nil {
		return nil, false
	}
	var ie *InputError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
