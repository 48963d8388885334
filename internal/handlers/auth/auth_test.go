package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	authz "github.com/Jeomhps/projet-IAC/reservations-api/internal/auth"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/logging"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/models"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/password"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeAuthorizer struct {
	registered []models.Account
	logins     [][2]string

	userID      string
	token       string
	registerErr error
	loginErr    error
}

func (f *fakeAuthorizer) RegisterUser(_ context.Context, acc models.Account) (string, error) {
	f.registered = append(f.registered, acc)
	return f.userID, f.registerErr
}

func (f *fakeAuthorizer) Login(_ context.Context, userName, pass string) (string, error) {
	f.logins = append(f.logins, [2]string{userName, pass})
	return f.token, f.loginErr
}

type handler interface{ HandleRequest(c *gin.Context) }

func serve(h handler, method, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/", strings.NewReader(body))
	h.HandleRequest(c)
	return w
}

func TestRegister(t *testing.T) {
	f := &fakeAuthorizer{userID: "abcdefabcdefabcdef12"}
	w := serve(NewRegister(f, logging.Discard()), http.MethodPost, `{"userName":"john","password":"secret"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"userId":"abcdefabcdefabcdef12"}`, w.Body.String())
	assert.Equal(t, []models.Account{{UserName: "john", Password: "secret"}}, f.registered)
}

func TestRegisterBadRequests(t *testing.T) {
	for _, body := range []string{
		``,
		`{`,
		`[]`,
		`{}`,
		`{"userName":"john"}`,
		`{"password":"secret"}`,
		`{"userName":"","password":"secret"}`,
		`{"userName":42,"password":"secret"}`,
	} {
		f := &fakeAuthorizer{}
		w := serve(NewRegister(f, logging.Discard()), http.MethodPost, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `"userName and password required"`, w.Body.String(), body)
		assert.Empty(t, f.registered, body)
	}
}

func TestRegisterPolicyRejected(t *testing.T) {
	f := &fakeAuthorizer{registerErr: &authz.PolicyError{Reasons: []password.ErrorKind{password.Short}}}
	w := serve(NewRegister(f, logging.Discard()), http.MethodPost, `{"userName":"john","password":"aB"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `"password does not meet policy: SHORT"`, w.Body.String())
}

func TestRegisterStorageError(t *testing.T) {
	f := &fakeAuthorizer{registerErr: errors.New("db down")}
	w := serve(NewRegister(f, logging.Discard()), http.MethodPost, `{"userName":"john","password":"secret"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `"Internal server error"`, w.Body.String())
}

func TestLogin(t *testing.T) {
	f := &fakeAuthorizer{token: "033a928ef2e8cd760e51"}
	w := serve(NewLogin(f, logging.Discard()), http.MethodPost, `{"userName":"john","password":"secret"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"token":"033a928ef2e8cd760e51"}`, w.Body.String())
	assert.Equal(t, [][2]string{{"john", "secret"}}, f.logins)
}

func TestLoginWrongCredentials(t *testing.T) {
	f := &fakeAuthorizer{}
	w := serve(NewLogin(f, logging.Discard()), http.MethodPost, `{"userName":"john","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `"userName and password required"`, w.Body.String())
	assert.Len(t, f.logins, 1)
}

func TestLoginBadBody(t *testing.T) {
	f := &fakeAuthorizer{token: "t"}
	w := serve(NewLogin(f, logging.Discard()), http.MethodPost, `{"userName":"john"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.logins)
}

func TestLoginStorageError(t *testing.T) {
	f := &fakeAuthorizer{loginErr: errors.New("db down")}
	w := serve(NewLogin(f, logging.Discard()), http.MethodPost, `{"userName":"john","password":"secret"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUnsupportedMethodsAreIgnored(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		f := &fakeAuthorizer{token: "t", userID: "u"}
		for _, h := range []handler{NewRegister(f, logging.Discard()), NewLogin(f, logging.Discard())} {
			w := serve(h, method, `{"userName":"john","password":"secret"}`)
			assert.Empty(t, w.Body.String(), method)
		}
		assert.Empty(t, f.registered, method)
		assert.Empty(t, f.logins, method)
	}
}
