package wizard

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("idphone", func(fl validator.FieldLevel) bool {
		return IsIndonesianMobile(fl.Field().String())
	})
	return v
}

// Schema validates a step's data by decoding the state into a fresh value of T
// and running its `validate` struct tags. Field paths use the json tag names.
func Schema[T any]() func(FormState) ValidationErrors {
	return func(state FormState) ValidationErrors {
		var target T
		return ValidateInto(&target, state)
	}
}

// ValidateInto decodes state into target (weakly typed, keyed by json tags) and
// validates it.
func ValidateInto(target any, state FormState) ValidationErrors {
	decodeErr := Decode(state, target)
	errs := ValidationErrors{}
	if err := validate.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			errs["form"] = err.Error()
			return errs
		}
		for _, fe := range fieldErrs {
			path := fieldPath(fe.Namespace())
			if _, seen := errs[path]; !seen {
				errs[path] = describe(fe)
			}
		}
	}
	if decodeErr != nil && len(errs) == 0 {
		errs["form"] = "contains values of the wrong type"
	}
	return errs
}

// Decode copies state into a struct using json tag names, converting numeric
// strings and similar loosely typed input.
func Decode(state FormState, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	return dec.Decode(map[string]any(state))
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	label := fe.Field()
	kind := fe.Kind()
	switch fe.Tag() {
	case "required", "required_with", "required_if":
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	case "idphone":
		return label + " must be a valid Indonesian mobile number"
	case "url":
		return label + " must be a valid URL"
	case "datetime":
		return label + " must be a date in YYYY-MM-DD format"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", label, lowerFirst(fe.Param()))
	case "min", "gte":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must contain at least %s item(s)", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max", "lte":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must contain at most %s item(s)", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", label, fe.Param())
	case "numeric":
		return label + " must contain digits only"
	case "eq":
		return fmt.Sprintf("%s must be %s", label, fe.Param())
	}
	return label + " is invalid"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
