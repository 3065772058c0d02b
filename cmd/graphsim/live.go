package main

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/graphsim/internal/metrics"
	"github.com/san-kum/graphsim/internal/sim"
	"github.com/san-kum/graphsim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runLive(cmd *cobra.Command, args []string) error {
	// Log lines would tear the alternate screen.
	if logLevel == "" {
		logLevel = "error"
	}

	sched := sim.NewStepScheduler()
	s, err := openSession(cmd.Context(), args, sched)
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		s.mgr.AddObserver(metrics.NewCollector(reg))
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("metrics server", zap.Error(err))
			}
		}()
		s.closers = append(s.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		})
	}

	s.start()
	model := viz.NewLiveModel(s.mgr, sched, viz.LiveOptions{
		Title:         filepath.Base(s.name),
		StepsPerFrame: stepsPerFrame,
		Seed:          seed,
		Theme:         theme,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return errors.Join(err, s.Close())
}
