package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/config"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/handlers"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/logging"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/models"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/store"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return cfg
}

func modelsAccount(name, pass string) models.Account {
	return models.Account{UserName: name, Password: pass}
}

func writeFile(path, body string) error {
	return os.WriteFile(path, []byte(body), 0o600)
}

func TestOpenEngine(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig()
	e, err := OpenEngine(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryEngine{}, e)
	require.NoError(t, e.Close())

	cfg.Storage.Backend = config.BackendBadger
	cfg.Storage.DataDir = t.TempDir()
	e, err = OpenEngine(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	assert.IsType(t, &store.BadgerEngine{}, e)
	require.NoError(t, e.Close())

	cfg.Storage.Backend = "postgres"
	_, err = OpenEngine(ctx, cfg, logging.Discard())
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestBuildJWTRequiresSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.TokenFormat = config.TokenJWT
	_, err := Build(cfg, store.NewMemoryEngine(), logging.Discard())
	assert.Error(t, err)
}

func TestBuildJWTIssuesParsableTokens(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Auth.TokenFormat = config.TokenJWT
	cfg.Auth.JWTSecret = "s3cret"

	comps, err := Build(cfg, store.NewMemoryEngine(), logging.Discard())
	require.NoError(t, err)
	defer comps.Close()

	_, err = comps.Authorizer.RegisterUser(ctx, modelsAccount("alice", "pw"))
	require.NoError(t, err)
	token, err := comps.Authorizer.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	ok, err := comps.Authorizer.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Auth.AdminDefaultUser = "root"
	cfg.Auth.AdminDefaultPass = "Adm1nPassword"

	comps, err := Build(cfg, store.NewMemoryEngine(), logging.Discard())
	require.NoError(t, err)
	defer comps.Close()

	require.NoError(t, SeedAdmin(ctx, cfg, comps.Authorizer, logging.Discard()))
	require.NoError(t, SeedAdmin(ctx, cfg, comps.Authorizer, logging.Discard()))

	token, err := comps.Authorizer.Login(ctx, "root", "Adm1nPassword")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	cfg.Auth.AdminDefaultUser = "weak"
	cfg.Auth.AdminDefaultPass = "short"
	require.NoError(t, SeedAdmin(ctx, cfg, comps.Authorizer, logging.Discard()))
	token, err = comps.Authorizer.Login(ctx, "weak", "short")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestBuiltComponentsServeRouter(t *testing.T) {
	comps, err := Build(testConfig(), store.NewMemoryEngine(), logging.Discard())
	require.NoError(t, err)
	defer comps.Close()

	r := handlers.NewRouter(handlers.Deps{
		Authorizer:   comps.Authorizer,
		Reservations: comps.Reservations,
		Metrics:      comps.Metrics,
		Logger:       logging.Discard(),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reservation/all", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reservations_http_requests_total")
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := New()
	a.Writer = &out
	a.ErrWriter = &out
	a.ExitErrHandler = func(*cli.Context, error) {}
	err := a.Run(append([]string{"reservations-api"}, args...))
	return out.String(), err
}

func TestCheckPasswordCommand(t *testing.T) {
	out, err := runApp(t, "check-password", "asaAsasaYU")
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid":true,"reasons":[]}`, out)

	out, err = runApp(t, "check-password", "--admin", "asaAsasaYU")
	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.ExitCode())
	assert.JSONEq(t, `{"valid":false,"reasons":["NO_NUMBER"]}`, out)
}

func TestRevokeTokenRequiresArgument(t *testing.T) {
	_, err := runApp(t, "revoke-token")
	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.ExitCode())
}

func TestSeedCommandAgainstBadger(t *testing.T) {
	dir := t.TempDir()
	seedFile := dir + "/seed.yml"
	require.NoError(t, writeFile(seedFile, `
accounts:
  - userName: alice
    password: asaAsasaYU1
reservations:
  - room: A-101
    user: alice
    startDate: "2024-05-01"
    endDate: "2024-05-03"
`))
	t.Setenv("RESERVATIONS_STORAGE_BACKEND", config.BackendBadger)
	t.Setenv("RESERVATIONS_STORAGE_DATA_DIR", dir+"/data")
	t.Setenv("RESERVATIONS_AUTH_BCRYPT_COST", "4")

	out, err := runApp(t, "seed", "--file", seedFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Added account alice")
	assert.Contains(t, out, "accounts=1 reservations=1 skipped=0 failed=0")

	cfg := testConfig()
	cfg.Storage.Backend = config.BackendBadger
	cfg.Storage.DataDir = dir + "/data"
	e, err := OpenEngine(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	comps, err := Build(cfg, e, logging.Discard())
	require.NoError(t, err)
	defer comps.Close()

	all, err := comps.Reservations.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "A-101", all[0].Room)
}

func TestSweeperLockOnlyForMySQL(t *testing.T) {
	cfg := testConfig()
	comps, err := Build(cfg, store.NewMemoryEngine(), logging.Discard())
	require.NoError(t, err)
	defer comps.Close()

	sw := comps.Sweeper(cfg, logging.Discard())
	assert.Nil(t, sw.Locker)
	assert.Equal(t, cfg.Auth.SweepInterval, sw.Interval)
}
