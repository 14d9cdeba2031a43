package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"galaxy-airline/internal/client"
	"galaxy-airline/internal/config"
	"galaxy-airline/internal/db"
	"galaxy-airline/internal/gateway"
	"galaxy-airline/internal/prefs"
	"galaxy-airline/internal/sessionstore"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// env is everything a command needs, built once per invocation.
type env struct {
	cfg     config.ClientConfig
	logger  *zap.Logger
	api     *client.Client
	store   *sessionstore.Store
	gateway *gateway.Gateway

	prefs prefs.Store
	redis *redis.Client
}

type rootFlags struct {
	configPath string
	apiURL     string
	verbose    bool
}

// newRootCmd builds the command tree. The returned env must be closed after
// the command has run, whether it failed or not.
func newRootCmd() (*cobra.Command, *env) {
	var (
		flags rootFlags
		e     = &env{}
	)

	root := &cobra.Command{
		Use:   "galaxy",
		Short: "Galaxy Airline account client",
		Long: `galaxy signs you in to Galaxy Airline and keeps the session on this machine.

After a successful login or signup the command prints the dashboard the app
would open: the admin dashboard for administrators, the user dashboard for
everyone else.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd.Context(), flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a YAML config file (default $GALAXY_CONFIG)")
	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "identity service base URL")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCmd(e),
		newSignupCmd(e),
		newAdminDemoCmd(e),
		newLogoutCmd(e),
		newStatusCmd(e),
		newWhoamiCmd(e),
	)
	return root, e
}

func (e *env) setup(ctx context.Context, flags rootFlags) error {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if flags.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zcfg.OutputPaths = []string{"stderr"}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	e.logger = logger

	cfg, err := config.LoadClient(flags.configPath)
	if err != nil {
		return err
	}
	if flags.apiURL != "" {
		cfg.APIURL = flags.apiURL
	}
	e.cfg = cfg

	opts := prefs.Options{Backend: cfg.Session.Backend, Path: cfg.Session.Path, Scope: cfg.Session.Scope}
	if cfg.Session.Backend == prefs.BackendRedis {
		rc, err := db.NewRedisClient(ctx, db.RedisConfig{Addr: cfg.Session.RedisAddr, Password: cfg.Session.RedisPass})
		if err != nil {
			return err
		}
		e.redis = rc
		opts.Redis = rc
	}
	p, err := prefs.Open(ctx, opts)
	if err != nil {
		return err
	}
	e.prefs = p
	e.store = sessionstore.New(p, logger.Named("session"))

	api, err := client.New(cfg.APIURL, cfg.RequestTimeout, client.WithLogger(logger.Named("client")))
	if err != nil {
		return err
	}
	e.api = api

	demo := cfg.AdminDemo
	e.gateway = gateway.New(api, e.store, gateway.BootstrapConfig{
		Email:       demo.Email,
		Password:    demo.Password,
		DisplayName: demo.Name,
		LocalID:     demo.LocalID,
		LocalToken:  demo.LocalToken,
	}, gateway.WithTimeout(cfg.RequestTimeout), gateway.WithLogger(logger.Named("gateway")))
	return nil
}

// close waits for in-flight auth work so a late session commit is not lost,
// then releases storage.
func (e *env) close() error {
	if e.gateway != nil {
		done := make(chan struct{})
		go func() {
			e.gateway.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * e.cfg.RequestTimeout):
			fmt.Fprintln(os.Stderr, "warning: gave up waiting for a pending request")
		}
	}
	var err error
	if e.prefs != nil {
		err = e.prefs.Close()
	}
	if e.redis != nil {
		_ = e.redis.Close()
	}
	if e.logger != nil {
		_ = e.logger.Sync()
	}
	return err
}
