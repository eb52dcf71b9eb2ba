package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	val "github.com/go-playground/validator/v10"

	"github.com/Domenick1991/skysailor/internal/domain"
)

var (
	validate *val.Validate
	once     sync.Once
)

var messages = map[string]string{
	"required": "{field} is required",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"min":      "{field} must be at least {param}",
	"max":      "{field} must be at most {param}",
	"oneof":    "{field} must be one of {param}",
	"triptype": "{field} must be \"One Way\" or \"Return\"",
	"notblank": "{field} cannot be empty",
}

func instance() *val.Validate {
	once.Do(func() {
		validate = val.New(val.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		mustRegister("triptype", func(fl val.FieldLevel) bool {
			return domain.TripType(fl.Field().String()).Valid()
		})
		mustRegister("notblank", func(fl val.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

func mustRegister(tag string, fn val.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Struct validates data and reports the first failed rule as a
// *domain.ValidationError.
func Struct(data any) error {
	if err := instance().Struct(data); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) error {
	var errs val.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return domain.NewValidationError("", err.Error())
	}

	first := errs[0]
	msg, ok := messages[first.Tag()]
	if !ok {
		return domain.NewValidationError(first.Field(), first.Error())
	}
	msg = strings.ReplaceAll(msg, "{field}", first.Field())
	msg = strings.ReplaceAll(msg, "{param}", first.Param())
	return domain.NewValidationError(first.Field(), msg)
}
