// internal/app/features/errors/errlog.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with the user-facing error pages,
// so handlers report a failure in one call. logMsg and err go to the log;
// userMsg and backURL go to the page.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) logIt(r *http.Request, level string, logMsg string, err error) {
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	switch level {
	case "warn":
		e.log.Warn(logMsg, fields...)
	default:
		e.log.Error(logMsg, fields...)
	}
}

// LogServerError logs at error level and renders a full error page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.logIt(r, "error", logMsg, err)
	RenderForbidden(w, r, userMsg, backURL)
}

// LogBadRequest logs at warn level and renders a full error page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.logIt(r, "warn", logMsg, err)
	RenderForbidden(w, r, userMsg, backURL)
}

// LogForbidden logs at warn level and renders the access denied page.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.logIt(r, "warn", logMsg, err)
	RenderForbidden(w, r, userMsg, backURL)
}

// HTMX variants return a plain text snippet with the right status code
// instead of a full page, for requests that swap into an existing page.

func (e *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.logIt(r, "error", logMsg, err)
	http.Error(w, userMsg, http.StatusInternalServerError)
}

func (e *ErrorLogger) HTMXLogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.logIt(r, "warn", logMsg, err)
	http.Error(w, userMsg, http.StatusBadRequest)
}

func (e *ErrorLogger) HTMXLogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.logIt(r, "warn", logMsg, err)
	http.Error(w, userMsg, http.StatusForbidden)
}
