package binder

import (
	"github.com/bookbridge/bookbridge/pkg/models"
	"github.com/go-playground/validator/v10"
)

// roleValidator ensures the value is one of the known role names. The empty
// string is allowed so that optional role fields can be omitted; pair with
// `required` when the field is mandatory.
func roleValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.ValidRole(value)
}
