package importer

import "errors"

// ValidationError marks client-caused failures (empty file, wrong type,
// malformed CSV, zero vigent rows). The import aborts before mutating staging
// or production, and handlers map it to a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(message string) error {
	return &ValidationError{Message: message}
}

// IsValidationError reports whether err is client-caused.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RowError records a row-scoped problem. Row errors are aggregated into the
// audit log, never raised: a bad row must not abort the rows after it.
type RowError struct {
	Row     int    `json:"fila"`
	Message string `json:"mensaje"`
}

// AccountError records a failed seller auto-provisioning attempt. Account
// errors are a reported shortfall, not a pipeline failure.
type AccountError struct {
	Rut     string `json:"rut"`
	Message string `json:"mensaje"`
}
