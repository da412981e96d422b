package service

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/unisms/university-api/pkg/errors"
)

var (
	idNumberPattern = regexp.MustCompile(`^ETS\d{4}/\d{2}$`)
	gradePattern    = regexp.MustCompile(`^[A-F]\+?$`)
)

// NewValidator returns a validator with the domain's custom tags
// registered. Field names in violation lists come from json tags.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("idnumber", func(fl validator.FieldLevel) bool {
		return idNumberPattern.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		return gradePattern.MatchString(fl.Field().String())
	})

	return v
}

// invalidPayload converts a validator error into the policy layer's
// VALIDATION_ERROR carrying the full violation list.
func invalidPayload(err error) error {
	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	details := make([]appErrors.FieldError, 0, len(violations))
	for _, violation := range violations {
		details = append(details, appErrors.FieldError{
			Field:   violation.Field(),
			Message: fieldMessage(violation),
		})
	}
	return appErrors.WithDetails(appErrors.ErrValidation, details)
}

func fieldMessage(violation validator.FieldError) string {
	switch violation.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if violation.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", violation.Param())
		}
		return "must be a positive integer"
	case "max":
		return fmt.Sprintf("must be at most %s characters", violation.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", violation.Param())
	case "datetime":
		return "must be a valid date (YYYY-MM-DD)"
	case "e164":
		return "must be a valid phone number"
	case "idnumber":
		return "must match ETS{4 digits}/{2 digits}"
	case "grade":
		return "must be a letter A-F, optionally followed by +"
	default:
		return fmt.Sprintf("failed %s validation", violation.Tag())
	}
}

// fieldViolation builds a single violation entry for checks that
// struct tags cannot express.
func fieldViolation(field, message string) appErrors.FieldError {
	return appErrors.FieldError{Field: field, Message: message}
}
