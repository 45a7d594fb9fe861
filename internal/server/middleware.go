package server

import (
	"errors"
	"net/http"
	"time"

	"lawdesk/internal/gmail"
	"lawdesk/internal/logger"
	"lawdesk/internal/ocr"
	"lawdesk/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinLogger logs one line per request at a level chosen by status code.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user-agent", c.Request.UserAgent()),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("errors", errs))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Logger.Error("server error", fields...)
		case c.Writer.Status() >= 400:
			logger.Logger.Warn("client error", fields...)
		default:
			logger.Logger.Info("request completed", fields...)
		}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, gmail.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, gmail.ErrProvider):
		return http.StatusBadGateway
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ocr.ErrExtract):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// abortWithError records err on the context for the request log and writes
// {"error": ...} with the mapped status.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
