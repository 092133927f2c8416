package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseIntParam reads a positive integer path parameter. On failure it writes
// a 400 response and returns 0.
func ParseIntParam(c *gin.Context, param string) int {
	raw := strings.TrimSpace(c.Param(param))
	n, err := strconv.Atoi(raw)
	if raw == "" || err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: param + " must be a positive integer",
		})
		return 0
	}
	return n
}
