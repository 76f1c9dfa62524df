package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/cfoust/vecsim/pkg/config"
	"github.com/cfoust/vecsim/pkg/particles"
	"github.com/cfoust/vecsim/pkg/stream"

	"github.com/rs/zerolog/log"
)

func serveCommand(configs []string) error {
	config, err := config.Process(configs)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	serverConfig := config.Server

	system, err := particles.NewSystem(config.Simulation)
	if err != nil {
		return fmt.Errorf("invalid simulation settings: %w", err)
	}

	hub := stream.NewHub(serverConfig.MaxFPS, serverConfig.WriteTimeout())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 2)
	go func() {
		errc <- system.Run(ctx, func(frame particles.Frame) {
			if _, err := hub.Broadcast(frame); err != nil {
				log.Error().Err(err).Uint64("tick", frame.Tick).Msg("failed to broadcast frame")
			}
		})
	}()

	mux := http.NewServeMux()
	mux.Handle("/ws/", hub)
	mux.Handle("/api/status", NoStore(StatusHandler(system, hub)))

	server := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", serverConfig.Port),
		Handler: mux,
	}

	go func() {
		errc <- server.ListenAndServe()
	}()

	log.Info().
		Int("port", serverConfig.Port).
		Int("tickRate", config.Simulation.TickRate).
		Int("maxFPS", serverConfig.MaxFPS).
		Msg("streaming particles")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)

	var failure error
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("failed to serve")
			failure = err
		}
	case sig := <-sigs:
		log.Info().Msgf("terminating: %v", sig)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	return failure
}
