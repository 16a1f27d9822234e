// Command spiceapi serves the droplet-freezing assay HTTP API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/EERL-EPFL/spice-api-sub001/apiserver"
	"github.com/EERL-EPFL/spice-api-sub001/applog"
	"github.com/EERL-EPFL/spice-api-sub001/assets"
	"github.com/EERL-EPFL/spice-api-sub001/config"
	"github.com/EERL-EPFL/spice-api-sub001/ingest"
	"github.com/EERL-EPFL/spice-api-sub001/results"
	"github.com/EERL-EPFL/spice-api-sub001/store"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "spiceapi",
		Short: "Serve the droplet-freezing assay API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, cmd.Flags())
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	config.BindFlags(root.Flags())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, flags *pflag.FlagSet) error {
	cfg, err := config.Load(configPath, flags)
	if err != nil {
		return err
	}

	log := applog.New("spiceapi", cfg.Dev)
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := store.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("spiceapi: open database: %w", err)
	}
	defer db.Close()

	blobs, err := assets.NewLocalStore(cfg.AssetsDir)
	if err != nil {
		return fmt.Errorf("spiceapi: open blob store: %w", err)
	}

	coordinator := ingest.NewCoordinator(db, log)
	assembler := results.NewAssembler(db)
	srv := apiserver.New(db, coordinator, assembler, blobs, log)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
