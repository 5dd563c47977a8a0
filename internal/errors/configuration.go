package errors

import "fmt"

// ConfigurationError reports a data-integrity problem that prevents an answer from
// being scored, such as a missing quiz weight or question revision. It is never
// caused by user input.
type ConfigurationError struct {
	Resource string                 `json:"resource"`
	Reason   string                 `json:"reason"`
	Context  map[string]interface{} `json:"context,omitempty"`
	Err      error                  `json:"-"`
}

func (ce *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %s", ce.Resource, ce.Reason)
}

func (ce *ConfigurationError) Unwrap() error {
	return ce.Err
}

// NewConfigurationError creates a configuration error wrapping cause.
func NewConfigurationError(resource, reason string, cause error, context map[string]interface{}) *ConfigurationError {
	return &ConfigurationError{
		Resource: resource,
		Reason:   reason,
		Context:  context,
		Err:      cause,
	}
}
