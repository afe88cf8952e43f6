package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhouql/stockpick/internal/api"
	"github.com/zhouql/stockpick/internal/api/handlers"
	"github.com/zhouql/stockpick/internal/selection"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the report API server",
	Long: `Serves stored recommendation snapshots and cache health over
HTTP. The server is read-only and never triggers vendor fetches.

Endpoints:
  GET /health                        - health check
  GET /api/recommendations/latest    - newest snapshot
  GET /api/recommendations/dates     - stored run dates
  GET /api/recommendations/{date}    - snapshot by date
  GET /api/review/{date}             - performance review
  GET /api/cache/status              - cache row counts and pool stats

Example:
  go run ./cmd/stockpick serve
  go run ./cmd/stockpick serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from API_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	if servePort != "" {
		app.cfg.APIPort = servePort
	}

	repo := selection.NewRepository(app.store)
	recHandler := handlers.NewRecommendationHandler(repo, app.reviewer(), app.log)
	statusHandler := handlers.NewStatusHandler(app.store, app.db, app.log)

	router := api.NewRouter(recHandler, statusHandler, app.log)
	server := api.New(app.cfg, app.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
