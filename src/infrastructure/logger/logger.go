package logger

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey is the gin context key under which the request id is stored.
const RequestIDKey = "requestID"

type Logger struct {
	Log *zap.Logger
}

func NewLogger() (*Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Log: zapLogger}, nil
}

func NewDevelopmentLogger() (*Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Log: zapLogger}, nil
}

// NewNopLogger discards everything.
func NewNopLogger() *Logger {
	return &Logger{Log: zap.NewNop()}
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.Log.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.Log.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.Log.Error(msg, fields...)
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.Log.Debug(msg, fields...)
}

func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.Log.Fatal(msg, fields...)
}

func (l *Logger) Panic(msg string, fields ...zap.Field) {
	l.Log.Panic(msg, fields...)
}

// With returns a child logger that always carries the given fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Log: l.Log.With(fields...)}
}

// GinZapLogger logs one line per request after the handler chain ran.
func (l *Logger) GinZapLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("requestID", c.GetString(RequestIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			l.Log.Error("Request failed", fields...)
		case c.Writer.Status() >= 400:
			l.Log.Warn("Request rejected", fields...)
		default:
			l.Log.Info("Request handled", fields...)
		}
	}
}

func (l *Logger) SetupGinWithZapLogger() {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = zapWriter{log: l.Log, level: zapcore.InfoLevel}
	gin.DefaultErrorWriter = zapWriter{log: l.Log, level: zapcore.ErrorLevel}
}

func (l *Logger) SetupGinWithZapLoggerInDevelopment() {
	gin.SetMode(gin.DebugMode)
	gin.DefaultWriter = zapWriter{log: l.Log, level: zapcore.DebugLevel}
	gin.DefaultErrorWriter = zapWriter{log: l.Log, level: zapcore.ErrorLevel}
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
		l.Log.Debug("Route registered",
			zap.String("method", httpMethod),
			zap.String("path", absolutePath),
			zap.String("handler", handlerName),
			zap.Int("handlers", nuHandlers))
	}
}

type zapWriter struct {
	log   *zap.Logger
	level zapcore.Level
}

func (w zapWriter) Write(p []byte) (int, error) {
	if ce := w.log.Check(w.level, strings.TrimSpace(string(p))); ce != nil {
		ce.Write(zap.String("source", "gin"))
	}
	return len(p), nil
}
