package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	// MaxRequestBodySize is the maximum allowed request body size (64KB).
	// A link request is two short strings.
	MaxRequestBodySize = 64 << 10
)

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON decodes a single JSON object from the request body into T,
// rejecting unknown fields, oversized bodies and trailing data.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var zero T

	if r.Body == nil || r.Body == http.NoBody {
		return zero, ErrEmptyBody
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)
	defer func() {
		_ = r.Body.Close()
	}()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var v T
	if err := decoder.Decode(&v); err != nil {
		return zero, describeDecodeError(err)
	}

	if decoder.More() {
		return zero, errors.New("request body contains multiple JSON objects")
	}
	if _, err := decoder.Token(); err != io.EOF {
		return zero, errors.New("request body contains multiple JSON objects")
	}

	return v, nil
}

func describeDecodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var unmarshalErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
	case errors.As(err, &unmarshalErr):
		return fmt.Errorf("invalid value for field %q", unmarshalErr.Field)
	case errors.As(err, &maxBytesErr):
		return fmt.Errorf("request body too large (max %d bytes)", MaxRequestBodySize)
	case errors.Is(err, io.EOF):
		return ErrEmptyBody
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("malformed JSON: unexpected end of input")
	default:
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
}
