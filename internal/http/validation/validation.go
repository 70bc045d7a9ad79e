package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type FieldErrors map[string]string

// CourseLevels are the levels the course form offers.
var CourseLevels = []string{"Beginner", "Intermediate", "Advanced", "Beginner to Advanced"}

var ginOnce sync.Once

// InstallGin registers this package's rules on gin's default validator. Safe to call more than once.
func InstallGin() {
	ginOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			Install(v)
		}
	})
}

// Install makes v report json field names, validate decimal amounts as strings and
// understand the amount and course_level tags.
func Install(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonName)
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("amount", validAmount)
	_ = v.RegisterValidation("course_level", validCourseLevel)
}

// validAmount accepts positive major-unit amounts with at most two decimal places.
func validAmount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive() && d.Equal(d.Round(2))
}

func validCourseLevel(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, l := range CourseLevels {
		if s == l {
			return true
		}
	}
	return false
}

// FromBindError turns a bind/validation error into a field->message map keyed by json name.
// dst is the bound struct pointer, used when the validator has no tag-name func installed.
func FromBindError(err error, dst any) FieldErrors {
	out := FieldErrors{}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			key := fe.Field()
			if key == fe.StructField() {
				key = fieldKey(dst, fe.StructField())
			}
			out[key] = messageForTag(fe.Tag(), fe.Param())
		}
		return out
	}

	// type mismatch, bad JSON
	out["_"] = "Request body is invalid."
	return out
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return "-"
	}
	return name
}

func fieldKey(dst any, structField string) string {
	t := reflect.TypeOf(dst)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return strings.ToLower(structField)
	}
	f, ok := t.FieldByName(structField)
	if !ok {
		return strings.ToLower(structField)
	}
	if name := jsonName(f); name != "" && name != "-" {
		return name
	}
	return strings.ToLower(structField)
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Must be a valid email address."
	case "url":
		return "Must be a valid URL."
	case "min":
		return "Must be at least " + param + "."
	case "max":
		return "Must be at most " + param + " characters."
	case "gt":
		return "Must be greater than " + param + "."
	case "oneof":
		return "Must be one of: " + param + "."
	case "amount":
		return "Must be a positive amount with at most two decimal places."
	case "course_level":
		return "Must be one of: " + strings.Join(CourseLevels, ", ") + "."
	default:
		return "Invalid value."
	}
}
