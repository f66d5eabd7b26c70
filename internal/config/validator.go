package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a list of validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// ValidLogLevels returns the accepted log.level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: "must be one of " + strings.Join(ValidLogLevels(), ", "),
		})
	}
	if c.App.HistoryLimit < 1 {
		errs = append(errs, ValidationError{Field: "app.history_limit", Value: c.App.HistoryLimit, Message: "must be at least 1"})
	}
	if c.Trace.MaxNavigations < 1 {
		errs = append(errs, ValidationError{Field: "trace.max_navigations", Value: c.Trace.MaxNavigations, Message: "must be at least 1"})
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{Field: "server.port", Value: c.Server.Port, Message: "must be between 0 and 65535"})
	}
	return errs
}
