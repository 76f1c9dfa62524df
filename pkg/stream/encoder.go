package stream

import (
	"fmt"
	"io"

	"github.com/cfoust/vecsim/pkg/particles"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatCBOR Format = "cbor"
	FormatYAML Format = "yaml"
)

func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatCBOR:
		return FormatCBOR, nil
	case FormatYAML:
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown frame format %q", name)
}

type frameEncoder interface {
	Encode(v interface{}) error
}

// Encoder writes a sequence of frames: concatenated CBOR items or YAML
// documents.
type Encoder struct {
	format  Format
	encoder frameEncoder
	closer  io.Closer
	count   int
}

func NewEncoder(w io.Writer, format Format) (*Encoder, error) {
	switch format {
	case FormatCBOR:
		return &Encoder{
			format:  format,
			encoder: cbor.NewEncoder(w),
		}, nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		return &Encoder{
			format:  format,
			encoder: encoder,
			closer:  encoder,
		}, nil
	}
	return nil, fmt.Errorf("unknown frame format %q", format)
}

func (e *Encoder) Encode(frame particles.Frame) error {
	if err := e.encoder.Encode(frame); err != nil {
		return fmt.Errorf("could not encode frame %d as %s: %w", frame.Tick, e.format, err)
	}
	e.count++
	return nil
}

// Count is the number of frames written so far.
func (e *Encoder) Count() int {
	return e.count
}

func (e *Encoder) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}
