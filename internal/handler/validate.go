package handler

import (
	"github.com/go-playground/validator/v10"
)

// Validator adapts go-playground/validator to Echo's Validator interface.
// Request DTOs declare their constraints with `validate` struct tags and
// handlers call c.Validate after binding.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
