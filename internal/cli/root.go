package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikitakapustkin/bankctl/internal/bank"
	"github.com/nikitakapustkin/bankctl/internal/config"
	"github.com/nikitakapustkin/bankctl/internal/session"
	"github.com/nikitakapustkin/bankctl/pkg/logger"
	"github.com/nikitakapustkin/bankctl/pkg/otel"
	"github.com/nikitakapustkin/bankctl/pkg/tracer"
)

// App wires the session store, guard and API client behind the command tree.
// Each command is an action handler over this shared core; no command talks
// to the network except through the client.
type App struct {
	cfg     *config.Config
	session *session.Session
	guard   *session.Guard
	client  *bank.Client
}

func ExecuteContext(ctx context.Context) error {
	app := &App{}
	return app.newRootCommand().ExecuteContext(ctx)
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "bankctl",
		Short:         "Operator console for the remote banking service",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize()
		},
	}

	root.AddCommand(
		a.newLoginCommand(),
		a.newLogoutCommand(),
		a.newRegisterCommand(),
		a.newWhoamiCommand(),
		a.newClientCommand(),
		a.newAdminCommand(),
	)

	return root
}

func (a *App) initialize() error {
	if a.client != nil {
		return nil
	}

	cfg := config.MustLoad()
	a.cfg = cfg

	logger.InitLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)

	otelCfg := otel.DefaultConfig()
	otelCfg.Enabled = cfg.Observability.TraceEnabled
	otelCfg.EndpointURL = cfg.Observability.TracingEndpointURL
	otelCfg.SampleRatio = cfg.Observability.TraceSampleRatio
	if err := tracer.InitTracer("bankctl", otelCfg); err != nil {
		return fmt.Errorf("failed to init tracer: %w", err)
	}

	store, err := a.newStore(cfg)
	if err != nil {
		return err
	}

	a.session = session.New(store)
	a.guard = session.NewGuard(a.session)
	a.client = bank.NewClient(cfg.API.BaseURL, a.session, cfg.API.Timeout, bank.RetryPolicy{
		MaxAttempts: cfg.API.Retry.MaxAttempts,
		BaseDelay:   cfg.API.Retry.BaseDelay,
	})

	return nil
}

func (a *App) newStore(cfg *config.Config) (session.Store, error) {
	if cfg.Session.Redis.URL != "" {
		client, err := session.NewRedisClient(cfg.Session.Redis.URL, cfg.Session.Redis.PoolSize)
		if err != nil {
			return nil, err
		}
		return session.NewRedisStore(client), nil
	}
	return session.NewFileStore(cfg.Session.FilePath)
}

// requireRole is the page bootstrap: a redirect verdict stops the command
// with a pointer at the surface the operator should use instead.
func (a *App) requireRole(ctx context.Context, roles ...session.Role) (session.Role, error) {
	role, redirect, err := a.guard.RequireRole(ctx, roles...)
	if err != nil {
		return "", err
	}
	if redirect != nil {
		return "", fmt.Errorf("%s: use the %q surface", redirect.Reason, redirect.Target)
	}
	return role, nil
}
