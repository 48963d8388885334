package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func contextWith(method, target, body string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	return c
}

func TestReadObject(t *testing.T) {
	in, err := ReadObject(contextWith(http.MethodPost, "/", `{"userName":"a","n":1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"userName": "a", "n": float64(1)}, in)

	for _, body := range []string{``, `{`, `{"a":`, `[1,2]`, `"text"`, `null`, `not json`} {
		_, err := ReadObject(contextWith(http.MethodPost, "/", body))
		assert.ErrorIs(t, err, ErrMalformedBody, "body %q", body)
	}
}

func TestReadObjectKeysKeepsBodyOrder(t *testing.T) {
	in, keys, err := ReadObjectKeys(contextWith(http.MethodPut, "/", `{"endDate":"e","room":{"a":1},"startDate":"s","endDate":"e2"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"endDate", "room", "startDate"}, keys)
	assert.Equal(t, "e2", in["endDate"])

	for _, body := range []string{``, `{`, `{"a":`, `[1,2]`, `"text"`, `null`, `not json`} {
		_, _, err := ReadObjectKeys(contextWith(http.MethodPut, "/", body))
		assert.ErrorIs(t, err, ErrMalformedBody, "body %q", body)
	}
}

func TestReadObjectKeysTransportError(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPut, "/", failingReader{})
	_, _, err := ReadObjectKeys(c)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedBody)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestReadObjectTransportError(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", failingReader{})
	_, err := ReadObject(c)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedBody)
}

func TestStringField(t *testing.T) {
	in := map[string]any{"s": "v", "n": 3.0}
	s, ok := StringField(in, "s")
	assert.True(t, ok)
	assert.Equal(t, "v", s)
	_, ok = StringField(in, "n")
	assert.False(t, ok)
	_, ok = StringField(in, "missing")
	assert.False(t, ok)
}

func TestBearerToken(t *testing.T) {
	for header, want := range map[string]string{
		"":                    "",
		"033a928ef2e8cd760e51": "033a928ef2e8cd760e51",
		"Bearer abc":          "abc",
		"bearer abc":          "abc",
		"  abc  ":             "abc",
		"Bearer ":             "Bearer",
	} {
		c := contextWith(http.MethodGet, "/", "")
		c.Request.Header.Set("Authorization", header)
		assert.Equal(t, want, BearerToken(c), "header %q", header)
	}
}

func TestIsSupportedMethod(t *testing.T) {
	for _, m := range []string{"GET", "POST", "PUT", "DELETE"} {
		assert.True(t, IsSupportedMethod(m))
	}
	for _, m := range []string{"PATCH", "HEAD", "OPTIONS"} {
		assert.False(t, IsSupportedMethod(m))
	}
}
