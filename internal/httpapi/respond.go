// Package httpapi exposes the platform over REST with Gin.
//
// Responses use a JSend-style envelope:
//
//	{"status": "success", "data": {...}}   2xx
//	{"status": "fail",    "data": {...}}   4xx, caller's fault
//	{"status": "error",   "message": ...}  5xx, our fault
package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func respondSuccess(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"status": "success", "data": data})
}

func respondFail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "fail", "data": gin.H{"message": message}})
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "error", "message": message})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
