package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
)

// dateLayout is the wire format for calendar dates such as dateOfBirth.
const dateLayout = "2006-01-02"

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v   *validator.Validate
	now func() time.Time
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in reported errors follow the request's json tags.
func NewValidator() *echoValidator {
	ev := &echoValidator{v: validator.New(validator.WithRequiredStructEnabled()), now: time.Now}

	ev.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	ev.mustRegister("password", func(fl validator.FieldLevel) bool {
		return domain.SatisfiesPasswordPolicy(fl.Field().String())
	})
	// A birth date must be before today's UTC calendar day.
	ev.mustRegister("pastdate", func(fl validator.FieldLevel) bool {
		d, err := time.Parse(dateLayout, fl.Field().String())
		if err != nil {
			return false
		}
		return d.Before(ev.now().UTC().Truncate(24 * time.Hour))
	})

	return ev
}

func (ev *echoValidator) mustRegister(tag string, fn validator.Func) {
	if err := ev.v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("handler: register validation %q: %v", tag, err))
	}
}

// Validate satisfies the echo.Validator interface. Failures are reported as a
// *domain.ValidationError carrying one entry per offending field.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make([]domain.FieldError, 0, len(ve))
			for _, fe := range ve {
				fields = append(fields, domain.FieldError{Field: fe.Field(), Message: fieldError(fe)})
			}
			return domain.NewValidationError(fields...)
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "eqfield":
		return field + " must match password"
	case "password":
		return domain.PasswordPolicyMessage
	case "pastdate":
		return field + " must be a past date in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
