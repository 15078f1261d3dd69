package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors keeps field errors in the order checks were made.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e[0].Error()
}

// First returns the error shown to the user.
func (e Errors) First() FieldError {
	if len(e) == 0 {
		return FieldError{}
	}
	return e[0]
}

// Checker accumulates field errors for one payload.
type Checker struct {
	errs Errors
}

func (c *Checker) Add(field, code, message string) {
	c.errs = append(c.errs, FieldError{Field: field, Code: code, Message: message})
}

func (c *Checker) Required(field, value string) bool {
	if !Required(value) {
		c.Add(field, "required", "is required")
		return false
	}
	return true
}

// Length checks the rune length of the trimmed value; max <= 0 disables the upper bound.
func (c *Checker) Length(field, value string, min, max int) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < min {
		c.Add(field, "too_short", fmt.Sprintf("must be at least %d characters", min))
		return
	}
	if max > 0 && n > max {
		c.Add(field, "too_long", fmt.Sprintf("must be at most %d characters", max))
	}
}

func (c *Checker) Range(field string, value, min, max int64) {
	if value < min || value > max {
		c.Add(field, "out_of_range", fmt.Sprintf("must be between %d and %d", min, max))
	}
}

func (c *Checker) OneOf(field, value string, options []string) {
	trimmed := strings.TrimSpace(value)
	for _, option := range options {
		if strings.EqualFold(option, trimmed) {
			return
		}
	}
	c.Add(field, "invalid_option", "must be one of: "+strings.Join(options, ", "))
}

func (c *Checker) MaxItems(field string, n, max int) {
	if n > max {
		c.Add(field, "too_many", fmt.Sprintf("must contain at most %d items", max))
	}
}

// Err returns nil when every check passed.
func (c *Checker) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}
