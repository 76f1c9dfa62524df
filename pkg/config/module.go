package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	J "cuelang.org/go/encoding/json"
	"cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaFile string

//go:embed default.yaml
var DEFAULT []byte

// ErrUnsupportedFormat is returned for settings files that are not yaml or
// json.
var ErrUnsupportedFormat = errors.New("settings must be .yaml, .yml or .json")

func readFile(ctx *cue.Context, path string) (cue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, err
	}

	switch filepath.Ext(path) {
	case ".json":
		expr, err := J.Extract(path, data)
		if err != nil {
			return cue.Value{}, err
		}
		return ctx.BuildExpr(expr), nil
	case ".yaml", ".yml":
		file, err := yaml.Extract(path, data)
		if err != nil {
			return cue.Value{}, err
		}
		return ctx.BuildFile(file), nil
	}

	return cue.Value{}, ErrUnsupportedFormat
}

// layer merges one source of simulation and server settings onto settings.
func layer(settings, value cue.Value, source string) (cue.Value, error) {
	if err := value.Err(); err != nil {
		return settings, fmt.Errorf("settings in %s do not parse: %w", source, err)
	}

	settings = settings.Unify(value)
	if err := settings.Err(); err != nil {
		return settings, fmt.Errorf("settings in %s conflict with earlier settings: %w", source, err)
	}
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("settings in %s are out of range: %w", source, err)
	}

	return settings, nil
}

// Process layers the given settings files, in order, over the simulation and
// server schema. Without any files the embedded default.yaml is used. Fields
// no file sets keep the schema's defaults.
func Process(configPaths []string) (*Config, error) {
	ctx := cuecontext.New()

	settings := ctx.CompileString(schemaFile)
	if err := settings.Err(); err != nil {
		return nil, fmt.Errorf("settings schema does not compile: %w", err)
	}

	if len(configPaths) == 0 {
		file, err := yaml.Extract("default.yaml", DEFAULT)
		if err != nil {
			return nil, err
		}

		settings, err = layer(settings, ctx.BuildFile(file), "default.yaml")
		if err != nil {
			return nil, err
		}
	}

	for _, path := range configPaths {
		value, err := readFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("could not load settings from %s: %w", path, err)
		}

		settings, err = layer(settings, value, path)
		if err != nil {
			return nil, err
		}
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("simulation or server settings are incomplete: %w", err)
	}

	data, err := settings.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("could not export settings: %w", err)
	}

	config := Config{}
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := config.Check(); err != nil {
		return nil, err
	}

	return &config, nil
}
