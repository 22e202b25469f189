package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationError is one field-level binding failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var tagMessages = map[string]string{
	"required": "field is required",
	"email":    "invalid email format",
	"min":      "value is too short",
	"max":      "value is too long",
	"oneof":    "value is not one of the allowed options",
}

// RegisterTagNames makes binding errors report JSON field names instead of
// Go struct names. Called once during router setup.
func RegisterTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// BindError answers a failed bind with 400. Validator failures list each
// offending field; other decode errors pass through as-is.
func BindError(c *gin.Context, err error) {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := make([]ValidationError, 0, len(errs))
		for _, e := range errs {
			msg := tagMessages[e.Tag()]
			if msg == "" {
				msg = e.Error()
			}
			details = append(details, ValidationError{Field: e.Field(), Message: msg})
		}
		c.JSON(http.StatusBadRequest, &Response{
			Status:  "error",
			Message: "validation failed",
			Data:    details,
		})
		return
	}
	c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
}
