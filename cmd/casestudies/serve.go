package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/on-the-ground/composable_go/casestudies/shares"
	"github.com/on-the-ground/composable_go/internal/inspector"
	"github.com/on-the-ground/composable_go/internal/storage"
	"github.com/on-the-ground/composable_go/store"
)

func serveCmd(a *app) *cobra.Command {
	var (
		kind string
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the shared stats store over HTTP",
		Long: `Serve the shared stats store.

  GET  /state            current state as JSON
  POST /actions/{name}   increment, decrement, isPrime, dismissAlert, reset, selectTab
  GET  /ws               every published state as a JSON text frame
  GET  /metrics          Prometheus metrics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			stats, err := a.openStats(storage.Kind(kind))
			if err != nil {
				return err
			}
			defer stats.Release()

			s := store.New(shares.State{}, traced(a, shares.Reducer(stats)), a.storeOptions("stats")...)
			defer s.Close()
			observing := s.Send(shares.Appeared{})
			defer observing.Cancel()

			srv := &http.Server{
				Addr:              addr,
				Handler:           inspector.New(s, decodeSharesAction, inspector.WithLogger(a.logger), inspector.WithMetrics(a.metrics)).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errs := make(chan error, 1)
			go func() {
				a.logger.Info("serving", zap.String("addr", addr), zap.String("storage", kind))
				errs <- srv.ListenAndServe()
			}()

			select {
			case err := <-errs:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdown, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdown)
		},
	}
	cmd.Flags().StringVar(&kind, "storage", string(storage.SQLite), fmt.Sprintf("where stats live: %v", storage.Kinds))
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default config.server.addr)")
	return cmd
}

func decodeSharesAction(name string, body []byte) (shares.Action, error) {
	switch name {
	case "increment":
		return shares.CounterAction{Action: shares.IncrementTapped{}}, nil
	case "decrement":
		return shares.CounterAction{Action: shares.DecrementTapped{}}, nil
	case "isPrime":
		return shares.CounterAction{Action: shares.IsPrimeTapped{}}, nil
	case "dismissAlert":
		return shares.CounterAction{Action: shares.AlertDismissed{}}, nil
	case "reset":
		return shares.ProfileAction{Action: shares.ResetStatsTapped{}}, nil
	case "selectTab":
		var req struct {
			Tab shares.Tab `json:"tab"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, fmt.Errorf("selectTab: %w", err)
		}
		return shares.SelectedTab{Tab: req.Tab}, nil
	default:
		return nil, inspector.ErrUnknownAction
	}
}
