// Package common provides small helpers shared by the resource handlers.
package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/middleware"
)

// ErrMalformedBody marks request bodies that are not a JSON object. Handlers
// answer it with their own 400 message; any other body error is a 500.
var ErrMalformedBody = errors.New("malformed request body")

const (
	MsgUnauthorized  = "Unauthorized operation!"
	MsgInternalError = "Internal server error"
)

// ReadObject decodes the request body as a JSON object.
func ReadObject(c *gin.Context) (map[string]any, error) {
	var in map[string]any
	if err := c.ShouldBindJSON(&in); err != nil {
		if isDecodeError(err) {
			return nil, errors.Join(ErrMalformedBody, err)
		}
		return nil, err
	}
	if in == nil {
		// a literal null body
		return nil, ErrMalformedBody
	}
	return in, nil
}

// ReadObjectKeys decodes the request body like ReadObject and also returns the
// object's top-level keys in the order they appear in the body.
func ReadObjectKeys(c *gin.Context) (map[string]any, []string, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, nil, err
	}
	var in map[string]any
	if err := json.Unmarshal(raw, &in); err != nil {
		if isDecodeError(err) {
			return nil, nil, errors.Join(ErrMalformedBody, err)
		}
		return nil, nil, err
	}
	if in == nil {
		return nil, nil, ErrMalformedBody
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, nil, errors.Join(ErrMalformedBody, err)
	}
	keys := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, errors.Join(ErrMalformedBody, err)
		}
		key, _ := tok.(string)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, nil, errors.Join(ErrMalformedBody, err)
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return in, keys, nil
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		err.Error() == "invalid request"
}

// StringField returns in[key] when it is present and a JSON string.
func StringField(in map[string]any, key string) (string, bool) {
	v, ok := in[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// BearerToken returns the authorization header with an optional "Bearer "
// prefix removed.
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
		h = strings.TrimSpace(h[len("Bearer "):])
	}
	return h
}

// PathID returns the *id wildcard without its leading slash.
func PathID(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("id"), "/")
}

// IsSupportedMethod reports whether the handlers act on method at all.
func IsSupportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// Message writes a JSON string body.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, msg)
}

// InternalError logs err and writes the generic 500 body.
func InternalError(c *gin.Context, logger *slog.Logger, op string, err error) {
	logger.Error(op+" failed", "error", err, "request_id", c.GetString(middleware.KeyRequestID))
	Message(c, http.StatusInternalServerError, MsgInternalError)
}
