package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aymen-fkir/sku-review-generator/internal/extract"
	"github.com/aymen-fkir/sku-review-generator/internal/load"
	"github.com/aymen-fkir/sku-review-generator/internal/server"
	"github.com/aymen-fkir/sku-review-generator/internal/textgen"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload endpoint: POST a sheet, download its reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			generator, err := textgen.New(ctx, a.cfg.LLM)
			if err != nil {
				return err
			}
			s := server.New(a.cfg.Server,
				extract.NewExtractor(a.cfg.Quantity.DiscountCategory, a.logger),
				a.pipeline(generator),
				load.NewLoader(a.cfg.Output, a.logger),
				a.logger)
			srv := s.HTTPServer(addr)

			errc := make(chan error, 1)
			go func() {
				a.logger.Info("listening", zap.String("addr", srv.Addr))
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serving on %s: %w", srv.Addr, err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			a.logger.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr from the config)")
	return cmd
}
