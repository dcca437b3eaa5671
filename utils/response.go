package utils

import "github.com/gin-gonic/gin"

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type Page[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// RespondWithError aborts the request with an error body.
func RespondWithError(c *gin.Context, code int, message string, details map[string]string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Error: message, Details: details})
}
