package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/console-client/internal/observability"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	logger = observability.OrNop(logger)
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(requestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func requestLogger(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		duration := time.Since(start)
		metrics.RecordRequest(c.Path(), c.Method(), status, duration)
		logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
		return err
	}
}

// errorHandlingMiddleware renders errors as {"error": "<message>"}, the shape the client reads.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = errors.New("panic")
			}
			if err != nil {
				status := http.StatusInternalServerError
				message := "Internal server error"
				var fiberErr *fiber.Error
				if errors.As(err, &fiberErr) {
					status = fiberErr.Code
					message = fiberErr.Message
				} else {
					logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
				}
				metrics.RecordFailure(c.Path(), c.Method(), http.StatusText(status))
				c.Status(status)
				_ = c.JSON(fiber.Map{"error": message})
				err = nil
			}
		}()
		return c.Next()
	}
}
