package cli

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AlibekovAA/recipebook/backend/internal/auth/cleanup"
	authhttp "github.com/AlibekovAA/recipebook/backend/internal/auth/http"
	"github.com/AlibekovAA/recipebook/backend/internal/common/bootstrap"
	commonhttp "github.com/AlibekovAA/recipebook/backend/internal/common/http"
	"github.com/AlibekovAA/recipebook/backend/internal/common/server"
)

const serviceName = "auth"

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the auth HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := bootstrap.NewAuthApp(ctx, serviceName)
		if err != nil {
			return err
		}
		defer app.Close()

		cfg := app.Config
		if servePort != "" {
			cfg.HTTPPort = servePort
		}

		cleanupCtx, cancelCleanup := context.WithCancel(ctx)
		defer cancelCleanup()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			cleanup.Run(cleanupCtx, app.Auth, cfg.TokenCleanupInterval, app.Log)
		}()

		router := authhttp.NewRouter(app.Auth, app.Log, authhttp.Config{
			RequestTimeout: cfg.RequestTimeout,
			Ping:           app.Ping,
		})
		srv := server.New(server.DefaultConfig(cfg.HTTPPort), commonhttp.BuildBaseHandler(app.Log, router))

		stopCleanup := func(context.Context) error {
			app.Log.Infof("%s service: stopping cleanup goroutine", serviceName)
			cancelCleanup()
			wg.Wait()
			return nil
		}

		err = server.Run(ctx, srv, app.Log, serviceName, stopCleanup)
		cancelCleanup()
		wg.Wait()
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "HTTP port (overrides AUTH_HTTP_PORT)")
}
