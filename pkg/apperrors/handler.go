package apperrors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// As reports whether err is (or wraps) an *AppError, filling target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// HandleError writes an error response. Anything that is not an AppError
// is treated as an internal failure so the raw error never leaks out.
func HandleError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = InternalError(err)
	}
	c.JSON(appErr.HTTPCode, gin.H{"error": appErr})
}
