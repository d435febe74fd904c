// Package httputil writes plain-text responses for gateway endpoints.
//
// The reverse proxy only consumes status codes and browsers only need a short
// reason, so bodies are fixed strings. Client input is never echoed.
package httputil

import (
	"net/http"

	dErrors "gatekeeper/pkg/domain-errors"
)

const (
	BodyOK           = "OK"
	BodyUnauthorized = "Unauthorized"
	BodyInternal     = "Internal error"
)

// WriteText writes body as text/plain with the given status.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError translates err into a status and body. Only client input
// errors carry their message; their messages are fixed strings chosen by the
// handler. Authentication failures never say which check failed.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	code := dErrors.CodeOf(err)
	status := StatusFor(code)
	switch status {
	case http.StatusBadRequest:
		if dErrors.As(err, &de) {
			WriteText(w, status, de.Message)
			return
		}
		WriteText(w, status, http.StatusText(status))
	case http.StatusUnauthorized:
		WriteText(w, status, BodyUnauthorized)
	case http.StatusInternalServerError:
		WriteText(w, status, BodyInternal)
	default:
		WriteText(w, status, http.StatusText(status))
	}
}
