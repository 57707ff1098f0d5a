package middleware

import (
	"net/http"
	"strings"
	"time"

	"funcdata-hub/internal/logger"
)

// LoggingMiddleware records request/response pairs through the structured logger.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		requestID := GetRequestID(r)

		l := logger.GetLogger()
		if l != nil {
			l.LogAPIRequest(r.Method, r.URL.Path, r.UserAgent(), getClientIP(r), requestID)
		}

		next.ServeHTTP(wrapper, r)

		if l != nil {
			l.LogAPIResponse(r.Method, r.URL.Path, wrapper.statusCode, time.Since(start), requestID)
		}
	})
}

// responseWrapper captures the status code written by a handler.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// getClientIP resolves the client address behind proxies.
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// X-Forwarded-For may contain multiple IPs, take the first
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip := r.RemoteAddr
	if colonIndex := strings.LastIndex(ip, ":"); colonIndex != -1 {
		ip = ip[:colonIndex]
	}

	return ip
}
