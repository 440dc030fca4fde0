package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-designer/internal/api"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd)
		},
	}
}

func (a *app) serve(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if err := a.cfg.ValidateServe(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	a.log.Info("starting Gray Logic Designer",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	rt, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	health := map[string]api.HealthChecker{"database": rt.db}
	if rt.mqtt != nil {
		health["mqtt"] = rt.mqtt
	}
	if rt.influx != nil {
		health["influxdb"] = rt.influx
	}
	if rt.locker != nil {
		health["redis"] = rt.locker
	}

	server, err := api.New(api.Deps{
		Config:   a.cfg.API,
		Security: a.cfg.Security,
		Logger:   a.log,
		Service:  rt.service,
		Metrics:  rt.metrics,
		Health:   health,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if err := server.Close(); err != nil {
			a.log.Error("error closing API server", "error", err)
		}
	}()

	a.log.Info("Gray Logic Designer started", "address", fmt.Sprintf("%s:%d", a.cfg.API.Host, a.cfg.API.Port))

	<-ctx.Done()
	a.log.Info("shutdown signal received, stopping services...")
	return nil
}
