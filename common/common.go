package common

import (
	"context"
	"net/http"

	"github.com/taskade/taskade-backend/logger"
	"go.uber.org/zap"
)

// Fail on error
func FailOnError(ctx context.Context, msg string, err error) {
	logIfError(ctx, msg, err, nil)
}

// Fail on closed server
func FailIfServerErrored(ctx context.Context, msg string, err error) {
	logIfError(ctx, msg, err, func(err error) bool {
		return err != http.ErrServerClosed
	})
}

func logIfError(ctx context.Context, msg string, err error, shouldLog func(error) bool) {
	logger := logger.FromCtx(ctx)
	if err != nil && (shouldLog == nil || shouldLog(err)) {
		logger.Fatal(msg, zap.Error(err))
	}
}
