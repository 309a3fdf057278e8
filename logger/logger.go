package logger

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// GetLogger, safely instantiate and returns only one copy of logger
func GetLogger() *zap.Logger {
	once.Do(func() {
		logger = zap.Must(zap.NewProduction())
	})

	return logger
}

type contextKey string

const (
	loggerKey contextKey = "logger"
)

// WithLogger - attach a logger to exiting context and returns context
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromCtx - returns a logger from context
func FromCtx(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// RequestLogger stamps every request with a fresh id, attaches a
// request-scoped logger to the request context and writes one access log
// line when the handler chain finishes.
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := xid.New().String()
		reqLogger := base.With(zap.String("request_id", requestID))

		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), reqLogger))

		start := time.Now()
		c.Next()

		reqLogger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
