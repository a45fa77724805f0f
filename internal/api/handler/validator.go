package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kata/sweetshop/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("sweet_category", func(fl validator.FieldLevel) bool {
		return domain.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("image_ref", func(fl validator.FieldLevel) bool {
		return domain.ValidImageRef(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseRole(fl.Field().String())
		return err == nil
	})

	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Field failures come back
// as a *domain.ValidationError.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			verr := &domain.ValidationError{}
			for _, fe := range ve {
				verr.Add(fe.Field(), fieldError(fe))
			}
			return verr
		}
		return err
	}
	return nil
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	label := fe.Field()
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be a number greater than or equal to %s", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "sweet_category":
		return "Invalid category"
	case "image_ref":
		return "Invalid image URL or path"
	case "user_role":
		return "Role must be either user or admin"
	default:
		return fmt.Sprintf("%s failed validation (%s)", label, fe.Tag())
	}
}
