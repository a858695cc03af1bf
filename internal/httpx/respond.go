// Package httpx holds the gin helpers shared by the REST handlers.
package httpx

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/venezia/venezia-pos/api/posv1"
)

func OK[T any](c *gin.Context, status int, data T) {
	c.JSON(status, posv1.OK(data))
}

func Fail(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, posv1.Fail(code, msg))
}

func ServerError(c *gin.Context, msg string) {
	Fail(c, http.StatusInternalServerError, posv1.CodeServerError, msg)
}

// QueryInt reads an integer query parameter, returning def when absent or malformed.
func QueryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// ParamID reads a positive integer path parameter.
func ParamID(c *gin.Context, key string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
