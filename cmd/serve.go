package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kexuanli/askdocs/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the knowledge base over HTTP",
	Long: `Starts an HTTP server exposing POST /ask for questions, GET /collection
for collection metadata and GET /healthz for health checks.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides config)")
	serveCmd.Flags().Bool("allow-all", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetInt("port")
	allowAll, _ := cmd.Flags().GetBool("allow-all")

	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.Close()

	engine, err := s.newEngine()
	if err != nil {
		return err
	}

	serverCfg := server.Config{
		Port:     s.cfg.Server.Port,
		AllowAll: s.cfg.Server.AllowAll || allowAll,
	}
	if port > 0 {
		serverCfg.Port = port
	}

	srv := server.New(serverCfg, engine, s.manifest, s.cfg.Collection, s.logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	fmt.Printf("askdocs serving on :%d (collection %q)\n", serverCfg.Port, s.cfg.Collection)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
