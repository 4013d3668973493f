package rds

import (
	"errors"
	"fmt"

	"gopkg.in/go-playground/validator.v8"
)

var (
	validate = validator.New(&validator.Config{TagName: "validate"})

	ErrMissingIdentifier = errors.New("instance identifier is required")
)

func validateCreateInstanceInput(input CreateInstanceInput) error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("invalid create instance input: %v", err)
	}
	return nil
}

func validateIdentifier(identifier string) error {
	if err := validate.Field(identifier, "required"); err != nil {
		return ErrMissingIdentifier
	}
	return nil
}
