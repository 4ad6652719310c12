package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/console-client/internal/config"
	"github.com/spec-kit/console-client/internal/domain"
	"github.com/spec-kit/console-client/internal/events"
	"github.com/spec-kit/console-client/internal/gateway"
	"github.com/spec-kit/console-client/internal/navigation"
	"github.com/spec-kit/console-client/internal/notify"
	"github.com/spec-kit/console-client/internal/observability"
	"github.com/spec-kit/console-client/internal/persistence"
	"github.com/spec-kit/console-client/internal/policy"
	"github.com/spec-kit/console-client/internal/repository"
	"github.com/spec-kit/console-client/internal/service"
	"github.com/spec-kit/console-client/internal/session"
	"github.com/spec-kit/console-client/internal/siteconfig"
	"github.com/spec-kit/console-client/internal/worker"
)

const callbackRoute = "AuthCallback"

var (
	ErrUnknownProvider  = errors.New("unknown oauth provider")
	ErrProviderDisabled = errors.New("oauth provider is not enabled")
	ErrMissingToken     = errors.New("callback carried no token")
)

// Options override pieces of the default wiring, mostly for tests.
type Options struct {
	// Transport replaces the network transport of the gateway.
	Transport http.RoundTripper
	// Credentials replaces the repository selected by STORAGE_DRIVER.
	Credentials repository.CredentialRepository
	// Routes replaces the default route table.
	Routes []navigation.Route
}

// App is the assembled client core.
type App struct {
	Config        *config.Config
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Dispatcher    events.Dispatcher
	Notifications *notify.Queue
	Gateway       *gateway.Gateway
	Session       *session.Store
	SiteConfig    *siteconfig.Store
	Reactor       *policy.Reactor
	Resolver      *navigation.Resolver
	Router        *navigation.Router

	closers []func()
}

// New wires every component. The gateway is built first; the session store
// and the reaction policy are attached to it once they exist.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	logger = observability.OrNop(logger)
	a := &App{
		Config:        cfg,
		Logger:        logger,
		Metrics:       observability.NewMetrics(),
		Dispatcher:    events.NewInMemoryDispatcher(),
		Notifications: notify.NewQueue(cfg.Notify.QueueSize),
	}

	repo := opts.Credentials
	if repo == nil {
		var closer func()
		var err error
		repo, closer, err = newCredentialRepository(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}

	worker.StartNotificationWorker(service.NewNotificationService(a.Dispatcher, a.Notifications, logger.Named("notify")))

	a.Gateway = gateway.New(gateway.Options{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.RequestTimeout(),
		AdminNamespace: cfg.API.AdminNamespace,
		Transport:      opts.Transport,
	}, a.Metrics, logger)
	a.Session = session.NewStore(a.Gateway, repo, a.Dispatcher, logger.Named("session"))
	a.SiteConfig = siteconfig.NewStore(a.Gateway, logger.Named("siteconfig"))

	routes := opts.Routes
	if routes == nil {
		routes = navigation.DefaultRoutes()
	}
	resolver, err := navigation.NewResolver(routes)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Resolver = resolver
	guard := navigation.NewGuard(a.Session, a.Dispatcher, cfg.Navigation.LoginPath, cfg.Navigation.LandingPath, logger.Named("guard"))
	a.Router = navigation.NewRouter(resolver, guard, a.Dispatcher, logger.Named("router"))

	a.Reactor = policy.NewReactor(policy.Dependencies{
		Session:     a.Session,
		Navigator:   a.Router,
		Dispatcher:  a.Dispatcher,
		LoginPath:   cfg.Navigation.LoginPath,
		LandingPath: cfg.Navigation.LandingPath,
		Logger:      logger.Named("policy"),
	})

	a.Gateway.UseCredentials(a.Session)
	a.Gateway.UseReactor(a.Reactor)
	return a, nil
}

// Start restores the persisted session.
func (a *App) Start(ctx context.Context) error {
	return a.Session.Hydrate(ctx)
}

// Close releases storage connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// OAuthURL returns the backend entry point for a third-party sign-in.
// Providers the site config reports as disabled are refused once it is loaded.
func (a *App) OAuthURL(provider domain.OAuthProvider) (string, error) {
	switch provider {
	case domain.OAuthGithub, domain.OAuthGoogle, domain.OAuthNodeloc:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if a.SiteConfig.Loaded() && !a.SiteConfig.Get().OAuth.Enabled(provider) {
		return "", fmt.Errorf("%w: %s", ErrProviderDisabled, provider)
	}
	return a.Gateway.URL("/api/auth/" + string(provider)), nil
}

// HandleCallback completes a third-party sign-in from the callback location
// "/auth/callback?token=...". On success the router lands on the landing view;
// otherwise it goes to the login view.
func (a *App) HandleCallback(ctx context.Context, target string) (navigation.Location, error) {
	match := a.Resolver.Resolve(target)
	if match.Route.Name != callbackRoute {
		return navigation.Location{}, fmt.Errorf("not a callback location: %s", target)
	}

	token := match.Query.Get("token")
	var err error
	switch {
	case match.Query.Get("error") != "":
		err = fmt.Errorf("sign-in failed: %s", match.Query.Get("error"))
	case token == "":
		err = ErrMissingToken
	default:
		err = a.Session.AdoptCredential(ctx, token)
	}
	if err != nil {
		a.Logger.Warn("oauth callback failed", zap.Error(err))
		if _, navErr := a.Router.Navigate(ctx, a.Config.Navigation.LoginPath); navErr != nil {
			a.Logger.Warn("navigation after failed callback", zap.Error(navErr))
		}
		return a.Router.Current(), err
	}
	return a.Router.Navigate(ctx, a.Config.Navigation.LandingPath)
}

func newCredentialRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.CredentialRepository, func(), error) {
	logger = observability.OrNop(logger)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return repository.NewMemoryCredentialRepository(), nil, nil
	case config.StorageRedis:
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		return repository.NewRedisCredentialRepository(rdb.Client, cfg.Storage.Key), rdb.Close, nil
	case config.StoragePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		return repository.NewPostgresCredentialRepository(pg.PoolHandle(), cfg.Storage.Key), pg.Close, nil
	case config.StorageFile, "":
		return repository.NewFileCredentialRepository(cfg.Storage.FilePath), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
