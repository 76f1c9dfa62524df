package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/cfoust/vecsim/pkg/config"
	"github.com/cfoust/vecsim/pkg/particles"
	"github.com/cfoust/vecsim/pkg/stream"

	"github.com/rs/zerolog/log"
)

func writeFrames(w io.Writer, system *particles.System, steps int, format stream.Format) (int, error) {
	buffered := bufio.NewWriter(w)

	encoder, err := stream.NewEncoder(buffered, format)
	if err != nil {
		return 0, err
	}

	for i := 0; i < steps; i++ {
		frame, err := system.Advance()
		if err != nil {
			return encoder.Count(), err
		}

		if err := encoder.Encode(frame); err != nil {
			return encoder.Count(), err
		}
	}

	if err := encoder.Close(); err != nil {
		return encoder.Count(), err
	}

	return encoder.Count(), buffered.Flush()
}

func runCommand(configs []string, steps int, format string, out string) error {
	if steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", steps)
	}

	frameFormat, err := stream.ParseFormat(format)
	if err != nil {
		return err
	}

	config, err := config.Process(configs)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	system, err := particles.NewSystem(config.Simulation)
	if err != nil {
		return fmt.Errorf("invalid simulation settings: %w", err)
	}

	var w io.Writer = os.Stdout
	if out != "" {
		file, err := os.Create(out)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	written, err := writeFrames(w, system, steps, frameFormat)
	if err != nil {
		return err
	}

	centroid, err := system.Centroid()
	if err != nil {
		return err
	}

	log.Info().
		Int("frames", written).
		Int("particles", system.Len()).
		Stringer("centroid", centroid).
		Msg("simulation finished")

	return nil
}
