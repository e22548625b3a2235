package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/automator-io/admin-service/pkg/response"
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers the pwd alias used by password payloads.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterAlias("pwd", "min=8") // password minimum length
	}
}

// ToDetails converts binding/validation errors into per-field error details
// for the response envelope.
func ToDetails(err error) []response.ErrorDetail {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return []response.ErrorDetail{{Code: "VALIDATION_ERROR", Message: "invalid json payload"}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]response.ErrorDetail, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, response.ErrorDetail{
				Code:    "VALIDATION_ERROR",
				Message: fe.Field() + " " + formatFieldError(fe),
				Field:   fe.Field(),
			})
		}
		return out
	}

	return []response.ErrorDetail{{Code: "VALIDATION_ERROR", Message: "invalid payload"}}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "min", "pwd":
		if fe.Kind() == reflect.String {
			return "must be at least " + paramOr(param, "8") + " characters"
		}
		return "must be at least " + param
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + param + " characters"
		}
		return "must be at most " + param
	case "len":
		return "must have length " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "gt":
		return "must be greater than " + param
	case "lt":
		return "must be less than " + param
	case "oneof":
		return "must be one of: " + param
	case "alphanum":
		return "must contain only letters and numbers"
	case "alpha":
		return "must contain only letters"
	case "numeric":
		return "must be numeric"
	case "datetime":
		return "must match datetime format " + param
	case "e164":
		return "must be a valid phone number"
	default:
		return "is invalid"
	}
}

func paramOr(param, fallback string) string {
	if param == "" {
		return fallback
	}
	return param
}
