package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/vegan-dog-recipes/backend/internal/types"
)

// Recovery logs panics and returns a JSON 500 instead of dropping the
// connection.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.String("request_id", c.GetString(RequestIDKey)),
					zap.Any("error", err),
					zap.String("stack", string(debug.Stack())),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Internal Server Error"})
			}
		}()

		c.Next()
	}
}

// NoRoute returns a JSON 404 for unknown paths
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Not Found"})
}
