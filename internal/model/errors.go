package model

import "fmt"

// ValidationError reports malformed raw input. Inputs are sanitized at the
// edge, so reaching this error means a caller bypassed the sanitizer.
type ValidationError struct {
	Field   Field  `json:"field"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s[%d]: %s", e.Field, e.Index, e.Message)
}
