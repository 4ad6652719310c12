package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	httptransport "github.com/spec-kit/console-client/internal/api/http"
	"github.com/spec-kit/console-client/internal/config"
	"github.com/spec-kit/console-client/internal/domain"
	"github.com/spec-kit/console-client/internal/notify"
	"github.com/spec-kit/console-client/internal/policy"
	"github.com/spec-kit/console-client/internal/repository"
	apperrors "github.com/spec-kit/console-client/pkg/util"
)

const (
	adminEmail    = "root@example.test"
	adminPassword = "rootpw"
	userEmail     = "user@example.test"
	userPassword  = "userpw"
)

type fixture struct {
	app  *App
	srv  *httptransport.DevServer
	repo repository.CredentialRepository
}

func testConfig() *config.Config {
	return &config.Config{
		API:        config.APIConfig{BaseURL: "http://backend.test", AdminNamespace: "/admin/"},
		Storage:    config.StorageConfig{Driver: config.StorageMemory, Key: "token"},
		Navigation: config.NavigationConfig{LoginPath: "/login", LandingPath: "/dashboard"},
		Notify:     config.NotifyConfig{QueueSize: 16},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithConfig(t, testConfig())
}

func newFixtureWithConfig(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	ctx := context.Background()
	srv, err := httptransport.NewDevServer(ctx, config.DevServerConfig{
		JWTSecret:             "test-secret",
		BcryptCost:            4,
		SiteName:              "Test Console",
		AllowPasswordRegister: true,
		AdminUsername:         "root",
		AdminEmail:            adminEmail,
		AdminPassword:         adminPassword,
	}, "test", nil, nil)
	require.NoError(t, err)
	_, err = srv.Auth.RegisterUser(ctx, "user", userEmail, userPassword, "")
	require.NoError(t, err)

	repo := repository.NewMemoryCredentialRepository()
	a, err := New(ctx, cfg, nil, Options{
		Transport:   httptransport.InProcessTransport(srv.App),
		Credentials: repo,
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	require.NoError(t, a.Start(ctx))
	return &fixture{app: a, srv: srv, repo: repo}
}

func messages(q *notify.Queue) []string {
	var out []string
	for _, n := range q.Drain() {
		out = append(out, n.Message)
	}
	return out
}

func TestLoginAndVisitProtectedRoute(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	loc, err := f.app.Router.Navigate(ctx, "/domains")
	require.NoError(t, err)
	require.Equal(t, "/login", loc.Path)

	require.NoError(t, f.app.Session.Login(ctx, domain.Credentials{Email: userEmail, Password: userPassword}))
	require.True(t, f.app.Session.IsAuthenticated())
	require.False(t, f.app.Session.IsAdmin())

	loc, err = f.app.Router.Navigate(ctx, "/domains")
	require.NoError(t, err)
	require.Equal(t, "/domains", loc.Path)

	loc, err = f.app.Router.Navigate(ctx, "/login")
	require.NoError(t, err)
	require.Equal(t, "/dashboard", loc.Path)

	stored, err := f.repo.Load(ctx)
	require.NoError(t, err)
	cred, _ := f.app.Session.Credential()
	require.Equal(t, cred, stored)
}

func TestWrongPasswordKeepsSignedOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.app.Session.Login(ctx, domain.Credentials{Email: userEmail, Password: "wrong"})
	require.EqualError(t, err, "Invalid email or password")
	require.False(t, f.app.Session.IsAuthenticated())
	require.Empty(t, messages(f.app.Notifications))
	require.Equal(t, "/login", f.app.Router.Current().Path)
}

func TestNonAdminDeniedAdminView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.app.Session.Login(ctx, domain.Credentials{Email: userEmail, Password: userPassword}))
	f.app.Notifications.Drain()

	loc, err := f.app.Router.Navigate(ctx, "/admin/users")
	require.NoError(t, err)
	require.Equal(t, "/dashboard", loc.Path)
	require.Equal(t, []string{"Access denied: Admin privileges required"}, messages(f.app.Notifications))
}

func TestAdminViewFetchesProfileAfterHydrate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin, err := f.srv.Users.GetByEmail(ctx, adminEmail)
	require.NoError(t, err)
	token, err := f.srv.Auth.IssueToken(ctx, admin.ID)
	require.NoError(t, err)
	require.NoError(t, f.repo.Save(ctx, token))
	require.NoError(t, f.app.Start(ctx))
	require.False(t, f.app.Session.HasProfile())

	loc, err := f.app.Router.Navigate(ctx, "/admin")
	require.NoError(t, err)
	require.Equal(t, "/admin", loc.Path)
	require.True(t, f.app.Session.IsAdmin())
	require.Equal(t, int64(1), f.app.Metrics.Snapshot().Requests["/api/user/profile|GET|200"])
}

func TestRevokedCredentialExpiresDuringNavigation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.app.Session.Login(ctx, domain.Credentials{Email: adminEmail, Password: adminPassword}))
	admin, err := f.srv.Users.GetByEmail(ctx, adminEmail)
	require.NoError(t, err)
	require.NoError(t, f.srv.Auth.RevokeTokens(ctx, admin.ID))

	// Restart with the persisted, now revoked, credential.
	require.NoError(t, f.app.Start(ctx))
	f.app.Notifications.Drain()

	loc, err := f.app.Router.Navigate(ctx, "/admin/settings")
	require.NoError(t, err)
	require.Equal(t, "/login", loc.Path)
	require.False(t, f.app.Session.IsAuthenticated())
	_, err = f.repo.Load(ctx)
	require.ErrorIs(t, err, repository.ErrNoCredential)
	require.Equal(t, []string{"Your session has expired. Please sign in again."}, messages(f.app.Notifications))
}

func TestAdminEndpointPromptsNonAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.app.Session.Login(ctx, domain.Credentials{Email: userEmail, Password: userPassword}))
	_, err := f.app.Router.Navigate(ctx, "/domains")
	require.NoError(t, err)
	f.app.Notifications.Drain()

	err = f.app.Gateway.Get(ctx, "/api/admin/users", nil)
	require.True(t, apperrors.IsKind(err, apperrors.KindAuthorizationDenied))
	require.True(t, f.app.Session.IsAuthenticated())

	pending := f.app.Notifications.Drain()
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].Prompt)
	require.Equal(t, policy.AdminExitMessage, pending[0].Message)

	require.NoError(t, f.app.Reactor.ResolvePrompt(ctx, pending[0].Prompt.ID, policy.ChoiceLogout))
	require.False(t, f.app.Session.IsAuthenticated())
	require.Equal(t, "/login", f.app.Router.Current().Path)
}

func TestAdminPromptContinue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.app.Session.Login(ctx, domain.Credentials{Email: userEmail, Password: userPassword}))
	f.app.Notifications.Drain()

	require.Error(t, f.app.Gateway.Get(ctx, "/api/admin/users", nil))
	prompt := f.app.Notifications.Drain()[0].Prompt

	require.NoError(t, f.app.Reactor.ResolvePrompt(ctx, prompt.ID, policy.ChoiceContinue))
	require.True(t, f.app.Session.IsAuthenticated())
	require.Equal(t, "/dashboard", f.app.Router.Current().Path)
}

func TestAdminPromptSurvivesFullQueue(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Notify.QueueSize = 1
	f := newFixtureWithConfig(t, cfg)
	require.NoError(t, f.app.Session.Login(ctx, domain.Credentials{Email: userEmail, Password: userPassword}))
	f.app.Notifications.Drain()

	require.Error(t, f.app.Gateway.Get(ctx, "/api/admin/users", nil))
	_, err := f.app.Router.Navigate(ctx, "/admin")
	require.NoError(t, err)

	queued := f.app.Notifications.Drain()
	require.Len(t, queued, 1)
	require.NotNil(t, queued[0].Prompt)
	require.Equal(t, []string{queued[0].Prompt.ID}, f.app.Reactor.PendingPrompts())

	require.NoError(t, f.app.Reactor.ResolvePrompt(ctx, queued[0].Prompt.ID, policy.ChoiceContinue))
	f.app.Notifications.Drain()

	require.Error(t, f.app.Gateway.Get(ctx, "/api/admin/users", nil))
	queued = f.app.Notifications.Drain()
	require.Len(t, queued, 1)
	require.NotNil(t, queued[0].Prompt)
	require.Equal(t, policy.AdminExitMessage, queued[0].Message)
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	msg, err := f.app.Session.Register(ctx, domain.Registration{Username: "new", Email: "new@example.test", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "User registered successfully", msg)
	require.False(t, f.app.Session.IsAuthenticated())

	_, err = f.app.Session.Register(ctx, domain.Registration{Username: "new", Email: "new@example.test", Password: "pw"})
	require.EqualError(t, err, "Email already exists")

	require.NoError(t, f.app.Session.Login(ctx, domain.Credentials{Email: "new@example.test", Password: "pw"}))
	profile, ok := f.app.Session.Profile()
	require.True(t, ok)
	require.Equal(t, "new", profile.DisplayName)
}

func TestOAuthCallback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user, err := f.srv.Users.GetByEmail(ctx, userEmail)
	require.NoError(t, err)
	token, err := f.srv.Auth.IssueToken(ctx, user.ID)
	require.NoError(t, err)

	loc, err := f.app.HandleCallback(ctx, "/auth/callback?token="+token)
	require.NoError(t, err)
	require.Equal(t, "/dashboard", loc.Path)
	profile, ok := f.app.Session.Profile()
	require.True(t, ok)
	require.Equal(t, userEmail, profile.Email)

	f.app.Session.Logout(ctx)
	loc, err = f.app.HandleCallback(ctx, "/auth/callback")
	require.ErrorIs(t, err, ErrMissingToken)
	require.Equal(t, "/login", loc.Path)

	_, err = f.app.HandleCallback(ctx, "/auth/callback?token=bogus")
	require.Error(t, err)
	require.False(t, f.app.Session.IsAuthenticated())

	_, err = f.app.HandleCallback(ctx, "/dashboard?token="+token)
	require.Error(t, err)
}

func TestOAuthURL(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	url, err := f.app.OAuthURL(domain.OAuthGithub)
	require.NoError(t, err)
	require.Equal(t, "http://backend.test/api/auth/github", url)

	_, err = f.app.OAuthURL("myspace")
	require.ErrorIs(t, err, ErrUnknownProvider)

	// The dev server enables no providers.
	require.NoError(t, f.app.SiteConfig.Load(ctx))
	_, err = f.app.OAuthURL(domain.OAuthGithub)
	require.ErrorIs(t, err, ErrProviderDisabled)
	require.Equal(t, "Test Console", f.app.SiteConfig.Get().SiteName)
}

func TestCredentialRepositoryDrivers(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig()
	repo, closer, err := newCredentialRepository(ctx, cfg, nil)
	require.NoError(t, err)
	require.Nil(t, closer)
	require.NoError(t, repo.Save(ctx, "T1"))

	cfg.Storage.Driver = config.StorageFile
	cfg.Storage.FilePath = filepath.Join(t.TempDir(), "token")
	repo, _, err = newCredentialRepository(ctx, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, "T2"))
	got, err := repository.NewFileCredentialRepository(cfg.Storage.FilePath).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "T2", got)

	mr := miniredis.RunT(t)
	cfg.Storage.Driver = config.StorageRedis
	cfg.Redis.Addr = mr.Addr()
	repo, closer, err = newCredentialRepository(ctx, cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer()
	require.NoError(t, repo.Save(ctx, "T3"))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "T3", got)

	cfg.Storage.Driver = config.StoragePostgres
	cfg.Postgres.DSN = ""
	_, _, err = newCredentialRepository(ctx, cfg, nil)
	require.Error(t, err)

	cfg.Storage.Driver = "sqlite"
	_, _, err = newCredentialRepository(ctx, cfg, nil)
	require.Error(t, err)
}
