package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/auth"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/logging"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/metrics"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/repository"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/store"
)

func init() { gin.SetMode(gin.TestMode) }

type server struct {
	t      *testing.T
	router *gin.Engine
}

func newServer(t *testing.T) *server {
	return newServerWithLogger(t, logging.Discard())
}

func newServerWithLogger(t *testing.T, logger *slog.Logger) *server {
	engine := store.NewMemoryEngine()
	a := auth.NewAuthorizer(
		repository.NewCredentialStore(engine, nil),
		repository.NewSessionStore(engine, nil),
		auth.WithHasher(auth.BcryptHasher{Cost: bcrypt.MinCost}),
		auth.WithLogger(logging.Discard()),
	)
	r := NewRouter(Deps{
		Authorizer:   a,
		Reservations: repository.NewReservationStore(engine, nil),
		Metrics:      metrics.NewRegistry(),
		Logger:       logger,
	})
	return &server{t: t, router: r}
}

func (s *server) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("authorization", token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) field(w *httptest.ResponseRecorder, key string) string {
	var out map[string]string
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out[key]
}

const someReservation = `{"id":"","room":"someRoom","user":"someUser","startDate":"someStartDate","endDate":"someEndDate"}`

func TestReservationFlow(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/register", "", `{"userName":"john","password":"secret"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, s.field(w, "userId"), store.IDLength)

	w = s.do(http.MethodPost, "/login", "", `{"userName":"john","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `"userName and password required"`, w.Body.String())

	w = s.do(http.MethodPost, "/login", "", `{"userName":"john","password":"secret"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	token := s.field(w, "token")
	assert.Len(t, token, store.IDLength)

	w = s.do(http.MethodPost, "/reservation", "", someReservation)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `"Unauthorized operation!"`, w.Body.String())

	w = s.do(http.MethodPost, "/reservation", token, `{"room":"someRoom"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `"Incomplete reservation!"`, w.Body.String())

	w = s.do(http.MethodPost, "/reservation", token, someReservation)
	require.Equal(t, http.StatusCreated, w.Code)
	id := s.field(w, "reservationId")
	require.NotEmpty(t, id)

	w = s.do(http.MethodGet, "/reservation/"+id, token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+id+`","room":"someRoom","user":"someUser","startDate":"someStartDate","endDate":"someEndDate"}`, w.Body.String())

	w = s.do(http.MethodGet, "/reservation/someId", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `"Reservation with id someId not found"`, w.Body.String())

	w = s.do(http.MethodPut, "/reservation/"+id, "Bearer "+token, `{"startDate":"otherStartDate"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"Updated startDate of reservation `+id+`"`, w.Body.String())

	w = s.do(http.MethodPut, "/reservation/"+id, token, `{"startDate":"s2","endDate":"e2"}`)
	assert.JSONEq(t, `"Updated startDate,endDate of reservation `+id+`"`, w.Body.String())

	w = s.do(http.MethodPut, "/reservation/"+id, token, `{"endDate":"e3","startDate":"s3"}`)
	assert.JSONEq(t, `"Updated endDate,startDate of reservation `+id+`"`, w.Body.String())

	w = s.do(http.MethodPut, "/reservation/"+id, token, `{"startDate1":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `"Please provide valid fields to update!"`, w.Body.String())

	w = s.do(http.MethodGet, "/reservation/all", token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"`+id+`","room":"someRoom","user":"someUser","startDate":"s3","endDate":"e3"}]`, w.Body.String())

	w = s.do(http.MethodGet, "/reservation/", token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `"Please provide an ID!"`, w.Body.String())

	w = s.do(http.MethodDelete, "/reservation/"+id, token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"Deleted reservation with id `+id+`"`, w.Body.String())

	w = s.do(http.MethodGet, "/reservation/"+id, token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthRoutesIgnoreGet(t *testing.T) {
	s := newServer(t)
	for _, p := range []string{"/register", "/login"} {
		w := s.do(http.MethodGet, p, "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	}
}

func TestOperationalRoutes(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	s.do(http.MethodPost, "/login", "", `{"userName":"ghost","password":"x"}`)
	w = s.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reservations_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodGet, "/machines", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestLogRecordsUser(t *testing.T) {
	var buf bytes.Buffer
	s := newServerWithLogger(t, slog.New(slog.NewJSONHandler(&buf, nil)))

	s.do(http.MethodPost, "/register", "", `{"userName":"john","password":"secret"}`)
	w := s.do(http.MethodPost, "/login", "", `{"userName":"john","password":"secret"}`)
	token := s.field(w, "token")

	buf.Reset()
	w = s.do(http.MethodGet, "/reservation/all", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request", line["msg"])
	assert.Equal(t, "/reservation/all", line["path"])
	assert.Equal(t, "john", line["user"])

	buf.Reset()
	s.do(http.MethodGet, "/reservation/all", "bogus", "")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "-", line["user"])
}
