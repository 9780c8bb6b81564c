package handler

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError wraps the validators.ValidationErrors to provide a more user-friendly message.
func ValidationError(err error) string {
	if err == nil {
		return ""
	}

	validationErrors := err.(validator.ValidationErrors)
	var errorMsgs []string

	for _, e := range validationErrors {
		// Customize error messages for better feedback
		switch e.Tag() {
		case "required":
			errorMsgs = append(errorMsgs, fmt.Sprintf("Field '%s' is required", e.Field()))
		case "min":
			errorMsgs = append(errorMsgs, fmt.Sprintf("Field '%s' must not be empty", e.Field()))
		case "gt":
			errorMsgs = append(errorMsgs, fmt.Sprintf("Field '%s' must be greater than %s", e.Field(), e.Param()))
		default:
			errorMsgs = append(errorMsgs, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
		}
	}

	return strings.Join(errorMsgs, ", ")
}
