package utils

import (
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"
)

// ServerConfig holds the listener settings for the API server
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig reads PORT, HOST and the *_TIMEOUT durations from the environment
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:         GetEnvOrDefault("HOST", ""),
		Port:         GetEnvOrDefault("PORT", "3000"),
		ReadTimeout:  GetEnvDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: GetEnvDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:  GetEnvDurationOrDefault("SERVER_IDLE_TIMEOUT", time.Minute),
	}
}

func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func CreateServer(config *ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              config.Addr(),
		Handler:           handler,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
	}
}

// PanicRecoveryMiddleware turns a handler panic into a 500 and logs the stack
func PanicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("Recovered from handler panic",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()))
			RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
