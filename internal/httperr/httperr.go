package httperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

type HTTPError struct {
	Success bool   `json:"success"`
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Success: false,
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

// From writes err using its kind. Unexpected errors never leak their text.
func From(c *gin.Context, err error) {
	var be BusinessError
	if errors.As(err, &be) && be.Kind != 0 && be.Kind != KindFatal {
		msg := be.Message
		if msg == "" {
			msg = be.Code
		}
		Write(c, be.Kind.Status(), be.Code, msg)
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c, "not_found", "Resource not found")
		return
	}

	_ = c.Error(err)
	Internal(c, "internal_error", "Something went wrong")
}

// IsUniqueViolation reports whether the store rejected a write because of a
// unique index or an exclusion constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation || pgErr.Code == pgExclusionViolation
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
