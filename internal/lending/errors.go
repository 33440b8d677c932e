package lending

import "errors"

// ValidationError reports malformed input such as a non-positive amount or a
// schedule whose length does not match the installment count.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IneligibleError reports a business rule gate that rejected the operation.
type IneligibleError struct {
	Message string
}

func (e *IneligibleError) Error() string { return e.Message }

// ConfigurationError reports a provider misconfiguration, e.g. no commission
// tier covering a principal.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

func validation(msg string) error    { return &ValidationError{Message: msg} }
func ineligible(msg string) error    { return &IneligibleError{Message: msg} }
func configuration(msg string) error { return &ConfigurationError{Message: msg} }

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsIneligible reports whether err is an IneligibleError
func IsIneligible(err error) bool {
	var target *IneligibleError
	return errors.As(err, &target)
}

// IsConfiguration reports whether err is a ConfigurationError
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
