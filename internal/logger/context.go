package logger

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ginKey = "logger"

// WithGin stores a request-scoped logger on the gin context.
func WithGin(c *gin.Context, l *zap.Logger) {
	c.Set(ginKey, l)
}

// FromGin returns the request-scoped logger, or the process logger when none was attached.
func FromGin(c *gin.Context) *zap.Logger {
	if value, ok := c.Get(ginKey); ok {
		if l, ok := value.(*zap.Logger); ok {
			return l
		}
	}
	return GetLogger()
}
