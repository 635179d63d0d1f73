package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Krunal123456/Bari/internal/domain/enums"
)

// FieldErrors maps a JSON field name to a human readable message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "post_type", func(fl validator.FieldLevel) bool {
		return enumField(fl, func(s string) bool { return enums.PostType(s).Valid() })
	})
	mustRegister(v, "post_priority", func(fl validator.FieldLevel) bool {
		return enumField(fl, func(s string) bool { return enums.PostPriority(s).Valid() })
	})
	mustRegister(v, "post_visibility", func(fl validator.FieldLevel) bool {
		return enumField(fl, func(s string) bool { return enums.PostVisibility(s).Valid() })
	})
	mustRegister(v, "post_status", func(fl validator.FieldLevel) bool {
		return enumField(fl, func(s string) bool { return enums.PostStatus(s).Valid() })
	})
	mustRegister(v, "profile_status", func(fl validator.FieldLevel) bool {
		return enumField(fl, func(s string) bool { return enums.ProfileStatus(s).Valid() })
	})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// enumField accepts empty values; presence is the job of `required`.
func enumField(fl validator.FieldLevel, valid func(string) bool) bool {
	value := strings.TrimSpace(fl.Field().String())
	return value == "" || valid(value)
}

// Struct validates s and returns FieldErrors for rule violations.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe)] = message(fe)
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if isSized(fe.Kind()) {
			return fmt.Sprintf("must have at least %s characters or items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isSized(fe.Kind()) {
			return fmt.Sprintf("must have at most %s characters or items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url", "http_url":
		return "must be a valid URL"
	case "post_type", "post_priority", "post_visibility", "post_status", "profile_status":
		return "has an unknown value"
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}

func isSized(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Slice || k == reflect.Map
}

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}
