// Package logger provides the desk's structured logging using Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

// ServiceName tags every log line written by the desk.
const ServiceName = "stockdesk"

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the global logger for env. "production" writes JSON, "test"
// discards everything, anything else writes console output. Every line carries
// the service name and env.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		switch env {
		case "production":
			base, err = zap.NewProduction()
		case "test":
			base = zap.NewNop()
		default:
			base, err = zap.NewDevelopment()
		}
		if err != nil {
			base = zap.NewNop()
		}

		if env == "" {
			env = "development"
		}
		sugar = base.With(zap.String("service", ServiceName), zap.String("env", env)).Sugar()
	})
}

// Get returns the global sugared logger, initialising a development logger if needed.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Named returns a child logger tagged with the given desk component.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// ForRequest returns a logger carrying the request id and the acting desk
// user. An empty username is logged as "anonymous".
func ForRequest(requestID, username string) *zap.SugaredLogger {
	if username == "" {
		username = "anonymous"
	}
	return Get().With("request_id", requestID, "user", username)
}

// Sync flushes buffered entries. Call it before the process exits.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
