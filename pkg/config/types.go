package config

import (
	"fmt"
	"time"
)

type Emitter struct {
	X, Y float64
	// Particles emitted per tick
	Rate int
	// Radians from the x axis
	Direction float64
	// Total width of the emission cone in radians
	Spread float64
	Speed  float64
}

type Gravity struct {
	X, Y float64
}

type SpeedLimits struct {
	Min float64
	Max float64
}

type Simulation struct {
	Seed         int64
	TickRate     int
	MaxParticles int
	Lifetime     int
	Drag         float64
	Swirl        float64
	Emitter      Emitter
	Gravity      Gravity
	Speed        SpeedLimits
	// 2x2 transform applied to positions in emitted frames
	View      [4]float64
	Precision int
}

type Server struct {
	Port           int
	MaxFPS         int
	WriteTimeoutMs int
}

func (s Server) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutMs) * time.Millisecond
}

type Config struct {
	Simulation Simulation
	Server     Server
}

// Check covers the constraints the schema cannot express.
func (c *Config) Check() error {
	speed := c.Simulation.Speed
	if speed.Min > speed.Max {
		return fmt.Errorf(
			"simulation.speed.min (%g) is greater than simulation.speed.max (%g)",
			speed.Min,
			speed.Max,
		)
	}

	return nil
}
