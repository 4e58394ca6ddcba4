package server

import (
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// errMissingField marks bodies that parsed but lack a required field. An
// empty body or a literal null counts as missing, not malformed.
var errMissingField = errors.New("missing required field")

// BindJSON decodes the request body into obj and validates its binding tags.
func BindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.Is(err, io.EOF) || errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", errMissingField, err)
	}
	return fmt.Errorf("json decode error: %w", err)
}
