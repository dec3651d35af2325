// Package validation plugs go-playground struct validation into echo, so
// request DTOs carry their rules in `validate` tags and handlers can rely on
// c.Validate as a fallback when no validator was injected directly.
package validation

import (
	"github.com/go-playground/validator/v10"
)

type RequestValidator struct {
	check *validator.Validate
}

func New() *RequestValidator {
	return &RequestValidator{check: validator.New()}
}

func (rv *RequestValidator) Validate(i any) error {
	return rv.check.Struct(i)
}
