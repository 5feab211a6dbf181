package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its struct tags and reports every failing
// field on its own line.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, fmt.Sprintf(
			"field '%s' failed validation: %s (value: '%v')",
			e.Namespace(), e.Tag(), e.Value(),
		))
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}
