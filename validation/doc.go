// Package validation provides input validation for gateway handlers and
// configuration.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tag validation is
// used for configuration sections; handlers use the fluent Validator.
//
// # Struct Tag Validation
//
//	type WhisperConfig struct {
//	    URL string `validate:"required,url"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("targetFormat", format)
//	err := v.Validate()
package validation
