package particles

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cfoust/vecsim/pkg/config"
	"github.com/cfoust/vecsim/pkg/vector"

	opt "github.com/repeale/fp-go/option"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
)

type Particle struct {
	Position *vector.Vector
	Velocity *vector.Vector
	// Ticks since emission
	Age int
}

// Frame is the drawable state of a System after a tick. Each entry is a
// particle position in view coordinates.
type Frame struct {
	Tick      uint64       `json:"tick" cbor:"tick" yaml:"tick"`
	Particles [][3]float64 `json:"particles" cbor:"particles" yaml:"particles,flow"`
}

type System struct {
	settings  config.Simulation
	emitter   *vector.Vector
	gravity   *vector.Vector
	view      vector.Transform
	random    *rand.Rand
	particles []*Particle
	tick      uint64
	mutex     deadlock.Mutex
}

func checkSettings(settings config.Simulation) error {
	switch {
	case settings.TickRate <= 0:
		return fmt.Errorf("tick rate must be positive, got %d", settings.TickRate)
	case settings.MaxParticles <= 0:
		return fmt.Errorf("max particles must be positive, got %d", settings.MaxParticles)
	case settings.Lifetime <= 0:
		return fmt.Errorf("lifetime must be positive, got %d", settings.Lifetime)
	case !(settings.Drag > 0 && settings.Drag <= 1):
		return fmt.Errorf("drag must be in (0, 1], got %g", settings.Drag)
	case settings.Emitter.Rate < 0:
		return fmt.Errorf("emitter rate must not be negative, got %d", settings.Emitter.Rate)
	case settings.Precision < 0:
		return fmt.Errorf("precision must not be negative, got %d", settings.Precision)
	case !(settings.Speed.Min >= 0 && settings.Speed.Min <= settings.Speed.Max):
		return fmt.Errorf(
			"speed limits must satisfy 0 <= min <= max, got [%g, %g]",
			settings.Speed.Min,
			settings.Speed.Max,
		)
	}

	// Let the vector package vet the remaining numbers
	sample := vector.New(1, 1, 0)
	if err := sample.Apply2DTransformation(vector.Transform(settings.View)); err != nil {
		return fmt.Errorf("invalid view: %w", err)
	}
	if err := sample.Rotate2D(settings.Swirl, opt.None[*vector.Vector]()); err != nil {
		return fmt.Errorf("invalid swirl: %w", err)
	}
	if _, err := vector.FromAngle(settings.Emitter.Direction); err != nil {
		return fmt.Errorf("invalid emitter direction: %w", err)
	}
	if _, err := vector.Mult(sample, settings.Emitter.Speed); err != nil {
		return fmt.Errorf("invalid emitter speed: %w", err)
	}
	if _, err := vector.Mult(sample, settings.Emitter.Spread); err != nil {
		return fmt.Errorf("invalid emitter spread: %w", err)
	}

	return nil
}

func NewSystem(settings config.Simulation) (*System, error) {
	if err := checkSettings(settings); err != nil {
		return nil, err
	}

	return &System{
		settings:  settings,
		emitter:   vector.New(settings.Emitter.X, settings.Emitter.Y, 0),
		gravity:   vector.New(settings.Gravity.X, settings.Gravity.Y, 0),
		view:      vector.Transform(settings.View),
		random:    rand.New(rand.NewSource(settings.Seed)),
		particles: make([]*Particle, 0, settings.MaxParticles),
	}, nil
}

func (s *System) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.particles)
}

func (s *System) Tick() uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.tick
}

// Centroid returns the mean particle position, or the zero vector when there
// are no particles.
func (s *System) Centroid() (*vector.Vector, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sum := vector.New(0, 0, 0)
	if len(s.particles) == 0 {
		return sum, nil
	}

	for _, particle := range s.particles {
		if err := sum.Add(particle.Position); err != nil {
			return nil, err
		}
	}

	if err := sum.Div(float64(len(s.particles))); err != nil {
		return nil, err
	}

	return sum, nil
}

// move returns particle one tick later. particle itself is not modified.
func (s *System) move(particle *Particle) (*Particle, error) {
	velocity := particle.Velocity.Clone()
	if err := velocity.Add(s.gravity); err != nil {
		return nil, err
	}
	if err := velocity.Mult(s.settings.Drag); err != nil {
		return nil, err
	}
	if err := velocity.ClampMagnitude(s.settings.Speed.Min, s.settings.Speed.Max); err != nil {
		return nil, err
	}

	position := particle.Position.Clone()
	if err := position.Add(velocity); err != nil {
		return nil, err
	}
	if s.settings.Swirl != 0 {
		if err := position.Rotate2D(s.settings.Swirl, opt.Some(s.emitter)); err != nil {
			return nil, err
		}
	}

	return &Particle{
		Position: position,
		Velocity: velocity,
		Age:      particle.Age + 1,
	}, nil
}

func (s *System) emit(alive int) ([]*Particle, error) {
	emitter := s.settings.Emitter

	count := emitter.Rate
	if room := s.settings.MaxParticles - alive; count > room {
		count = room
	}

	emitted := make([]*Particle, 0, count)
	for i := 0; i < count; i++ {
		angle := emitter.Direction + emitter.Spread*(s.random.Float64()-0.5)
		velocity, err := vector.FromAngle(angle)
		if err != nil {
			return nil, err
		}
		if err := velocity.Mult(emitter.Speed); err != nil {
			return nil, err
		}

		emitted = append(emitted, &Particle{
			Position: s.emitter.Clone(),
			Velocity: velocity,
		})
	}

	return emitted, nil
}

// step leaves the particles and the tick untouched when it fails.
func (s *System) step() error {
	next := make([]*Particle, 0, s.settings.MaxParticles)
	for _, particle := range s.particles {
		moved, err := s.move(particle)
		if err != nil {
			return fmt.Errorf("failed to move particle: %w", err)
		}

		if moved.Age >= s.settings.Lifetime {
			continue
		}

		next = append(next, moved)
	}

	culled := len(s.particles) - len(next)

	emitted, err := s.emit(len(next))
	if err != nil {
		return fmt.Errorf("failed to emit particle: %w", err)
	}

	s.particles = append(next, emitted...)
	s.tick++

	log.Trace().
		Uint64("tick", s.tick).
		Int("emitted", len(emitted)).
		Int("culled", culled).
		Int("alive", len(s.particles)).
		Msg("stepped particles")

	return nil
}

// Step advances the simulation by one tick. Particles age and move first,
// expired ones are removed, then the emitter adds new ones.
func (s *System) Step() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.step()
}

func (s *System) snapshot() (Frame, error) {
	frame := Frame{
		Tick:      s.tick,
		Particles: make([][3]float64, 0, len(s.particles)),
	}

	scale := math.Pow(10, float64(s.settings.Precision))
	round := func(value float64) float64 {
		return math.Round(value*scale) / scale
	}

	for _, particle := range s.particles {
		viewed := particle.Position.Clone()
		if err := viewed.Apply2DTransformation(s.view); err != nil {
			return Frame{}, err
		}

		rounded, err := vector.Map(viewed, round)
		if err != nil {
			return Frame{}, err
		}

		frame.Particles = append(frame.Particles, rounded.ToArray())
	}

	return frame, nil
}

func (s *System) Snapshot() (Frame, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.snapshot()
}

// Advance steps the system and returns the resulting frame.
func (s *System) Advance() (Frame, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.step(); err != nil {
		return Frame{}, err
	}

	return s.snapshot()
}

// Run advances the system at the configured tick rate and hands every frame
// to sink until ctx is done.
func (s *System) Run(ctx context.Context, sink func(Frame)) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.settings.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			frame, err := s.Advance()
			if err != nil {
				return err
			}
			sink(frame)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
