// Package cli implements the moviesnow command line client. Commands are
// thin wrappers over the auth client; all contract logic lives there.
//
// The access token is never written to disk. Interactive flows keep it in
// the process token holder; scripted flows export MOVIESNOW_ACCESS_TOKEN
// from the login output and each later invocation seeds the holder from it.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"moviesnow/internal/auth/client"
	"moviesnow/internal/auth/models"
	"moviesnow/internal/auth/reauth"
	"moviesnow/internal/auth/token"
	"moviesnow/internal/platform/config"
	"moviesnow/internal/platform/logger"
	"moviesnow/internal/platform/metrics"
	"moviesnow/internal/transport"
)

var version = "dev"

type App struct {
	cfg    config.Config
	log    *slog.Logger
	client *client.Client
	coord  *reauth.Coordinator
	out    io.Writer
	in     *bufio.Reader
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	app := &App{out: os.Stdout, in: bufio.NewReader(os.Stdin)}
	if err := newRootCmd(app).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func newRootCmd(app *App) *cobra.Command {
	var configPath, apiURL string

	root := &cobra.Command{
		Use:           "moviesnow",
		Short:         "MoviesNow account and session management",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(configPath, apiURL)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides config)")

	root.AddCommand(
		newSignupCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newPasswordCmd(app),
		newMFACmd(app),
		newSessionsCmd(app),
		newDevicesCmd(app),
		newActivityCmd(app),
		newAlertsCmd(app),
		newAccountCmd(app),
		newTOTPCmd(app),
		newVersionCmd(app),
	)
	return root
}

// init wires config, transport and the auth client. Flags beat environment,
// environment beats the config file.
func (a *App) init(configPath, apiURL string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.BaseURL = apiURL
	}
	a.cfg = cfg
	a.log = logger.New(cfg.LogLevel)

	holder := &token.Holder{}
	if access := os.Getenv("MOVIESNOW_ACCESS_TOKEN"); access != "" {
		holder.Set(&models.TokenBundle{AccessToken: access, TokenType: "Bearer"})
	}

	opts := []transport.Option{
		transport.WithTokenSource(holder),
		transport.WithLogger(a.log),
		transport.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		transport.WithUserAgent("moviesnow-cli/" + version),
	}
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, transport.WithMetrics(metrics.New(reg)))
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				a.log.Error("metrics listener failed", "error", err)
			}
		}()
	}

	tr, err := transport.New(cfg.BaseURL, opts...)
	if err != nil {
		return err
	}
	a.client = client.New(tr, holder, client.WithLogger(a.log))
	a.coord = reauth.NewCoordinator(a, a.log)
	return nil
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(app.out, "moviesnow", version)
		},
	}
}
