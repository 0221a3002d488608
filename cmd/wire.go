package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	credtoml "github.com/bnema/docbrain-cli/internal/adapters/credstore/toml"
	"github.com/bnema/docbrain-cli/internal/adapters/rest"
	"github.com/bnema/docbrain-cli/internal/application"
	"github.com/bnema/docbrain-cli/internal/domain"
	"github.com/bnema/docbrain-cli/internal/ports"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".docbrain"
)

var errNotLoggedIn = errors.New("not logged in: run 'docbrain login' first")

type app struct {
	store   ports.CredentialStore
	client  *rest.Client
	session *application.Session
	poller  *application.StatusPoller
	logger  *slog.Logger

	lead           time.Duration
	cadence        application.Cadence
	activityWindow time.Duration
	now            func() time.Time
}

func wireApp() (*app, error) {
	cfg := viper.New()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))

	defaults := application.DefaultCadence()
	cfg.SetDefault("api.base_url", envOrDefault("DOCBRAIN_API_URL", "http://localhost:8000"))
	cfg.SetDefault("credentials.path", filepath.Join(homeDir, configDir, "credentials.toml"))
	cfg.SetDefault("auth.lead_window", application.DefaultRenewalLead)
	cfg.SetDefault("poll.interval", application.DefaultPollInterval)
	cfg.SetDefault("chat.waiting_interval", defaults.Waiting)
	cfg.SetDefault("chat.active_interval", defaults.Active)
	cfg.SetDefault("chat.idle_interval", defaults.Idle)
	cfg.SetDefault("activity.window", application.DefaultActivityWindow)

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	store, err := credtoml.NewStore(cfg.GetString("credentials.path"))
	if err != nil {
		return nil, fmt.Errorf("wire credential store: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client := rest.NewClient(cfg.GetString("api.base_url"), http.DefaultClient, store)

	a := &app{
		store:  store,
		client: client,
		poller: application.NewStatusPoller(cfg.GetDuration("poll.interval"), logger),
		logger: logger,
		lead:   cfg.GetDuration("auth.lead_window"),
		cadence: application.Cadence{
			Waiting: cfg.GetDuration("chat.waiting_interval"),
			Active:  cfg.GetDuration("chat.active_interval"),
			Idle:    cfg.GetDuration("chat.idle_interval"),
		},
		activityWindow: cfg.GetDuration("activity.window"),
		now:            time.Now,
	}
	a.session = a.newSession()

	return a, nil
}

// newSession builds a session over the shared store and transport; extra
// options let command surfaces attach their own signed-out behavior.
func (a *app) newSession(extra ...application.SessionOption) *application.Session {
	opts := append([]application.SessionOption{
		application.WithRenewalLead(a.lead),
		application.WithSessionLogger(a.logger),
	}, extra...)

	return application.NewSession(a.store, a.client.Auth(), ports.SystemClock{}, opts...)
}

func (a *app) requireAuth(ctx context.Context) error {
	if !a.session.CheckAuthenticated(ctx) {
		return errNotLoggedIn
	}
	return nil
}

// requirePermission resolves the current user's role and refuses the command
// up front instead of surfacing a server-side authorization failure.
func (a *app) requirePermission(ctx context.Context, permission domain.Permission) (domain.User, error) {
	if err := a.requireAuth(ctx); err != nil {
		return domain.User{}, err
	}

	user, err := a.client.Users().Current(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch current user: %w", err)
	}
	if !user.Role.Has(permission) {
		return domain.User{}, fmt.Errorf("role %q lacks permission %s", user.Role, permission)
	}

	return user, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
