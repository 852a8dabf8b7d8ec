package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

// --------------------------------------------------
// Request parsing shared by the handlers
// --------------------------------------------------

// idParam reads a positive numeric path parameter, writing a 400 when it
// is not one.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// queryUint reads an optional positive query parameter. ok is false only
// when the parameter is present and malformed.
func queryUint(c *gin.Context, name string) (v *uint, ok bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name)
		return nil, false
	}
	u := uint(n)
	return &u, true
}

func queryInt(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return n
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body")
		return false
	}
	return true
}
