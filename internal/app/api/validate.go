package api

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"complaintportal/internal/app/identity"
	"complaintportal/internal/pkg/errs"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	register := func(tag string, fn func(string) bool) {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	register("portal_role", func(s string) bool { return identity.Role(s).Valid() })
	register("portal_category", func(s string) bool { return Category(s).Valid() })
	register("portal_priority", func(s string) bool { return Priority(s).Valid() })
	register("portal_status", func(s string) bool { return Status(s).Valid() })

	return v
}

// Validate checks v against its struct tags and converts the first failure into a
// user-facing *errs.CustomError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "portal_role":
		return errs.NewError(errs.ErrInvalidRole)
	case "portal_category", "portal_priority", "portal_status":
		return errs.NewError(errs.ErrComplaintInvalid, strings.ToLower(fe.Field()))
	}
	if fe.Field() == "Description" {
		return errs.NewError(errs.ErrComplaintDescriptionRequired)
	}
	return errs.NewError(errs.ErrInvalidParams)
}

// FieldErrors lists every validation failure as field -> tag. The portal returns it as
// the data of a validation error response.
func FieldErrors(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"general": err.Error()}
	}
	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return out
}
