package httpx

import (
	"net/http"

	"github.com/sundayezeilo/shortlink/internal/errx"
)

// ErrorKindToStatus maps errx.Kind to HTTP status codes.
func ErrorKindToStatus(kind errx.Kind) int {
	switch kind {
	case errx.NotFound:
		return http.StatusNotFound
	case errx.Conflict:
		return http.StatusConflict
	case errx.Invalid:
		return http.StatusBadRequest
	case errx.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorKindToCode maps errx.Kind to error codes for JSON responses.
func ErrorKindToCode(kind errx.Kind) string {
	switch kind {
	case errx.NotFound:
		return "not_found"
	case errx.Conflict:
		return "conflict"
	case errx.Invalid:
		return "validation_failed"
	case errx.Unavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}

// WriteKindError writes err as a JSON error response using its errx.Kind.
// Client errors echo the error text; server errors use fallback so store
// details never leak.
func WriteKindError(w http.ResponseWriter, err error, fallback string) {
	kind := errx.KindOf(err)
	status := ErrorKindToStatus(kind)

	message := fallback
	if status < http.StatusInternalServerError {
		message = rootMessage(err)
	}
	WriteError(w, status, ErrorKindToCode(kind), message)
}

// rootMessage returns the innermost message of an errx chain, without the
// op prefixes added on the way up.
func rootMessage(err error) string {
	for {
		e, ok := err.(*errx.Error)
		if !ok || e.Err == nil {
			return err.Error()
		}
		err = e.Err
	}
}
