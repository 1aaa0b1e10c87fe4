package llm

import "fmt"

// ConfigError reports missing or invalid client configuration, such as an
// absent provider credential. It is the only error class that should abort
// the process: everything else surfaces mid-run as an error observation.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("llm configuration: %s", e.Message)
}

// IsConfigError reports whether err is a fatal configuration error.
func IsConfigError(err error) bool {
	_, ok := err.(*ConfigError)
	return ok
}
