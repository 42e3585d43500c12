// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads the YAML-described tuning knobs and per-product
// parameter override tables that vary between ecoMAX firmware/hardware
// variants (spec §9 design notes: static catalogs per product).
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Dispatcher holds the dispatcher's retry/timeout tuning (spec §4.3/§4.4).
// Only ReconnectDelayS is applied (econet-monitor passes it to
// protocol.WithReconnectDelay); device setup uses its own fixed retry and
// timeout constants and does not read the other fields.
type Dispatcher struct {
	RequiredRetries   int `yaml:"required_retries"`
	RequestTimeoutS   int `yaml:"request_timeout_seconds"`
	SetupTimeoutS     int `yaml:"setup_timeout_seconds"`
	ReconnectDelayS   int `yaml:"reconnect_delay_seconds"`
}

// DefaultDispatcher matches the values named in spec §4.3/§4.4/§9.
var DefaultDispatcher = Dispatcher{
	RequiredRetries: 3,
	RequestTimeoutS: 3,
	SetupTimeoutS:   60,
	ReconnectDelayS: 20,
}

// ParameterOverride narrows or relabels one parameter slot for a specific
// product variant -- e.g. a product that doesn't expose a given index, or
// clamps its writable range tighter than the generic catalog default.
type ParameterOverride struct {
	Index       int      `yaml:"index"`
	Name        string   `yaml:"name,omitempty"`
	Unsupported bool     `yaml:"unsupported,omitempty"`
	Min         *uint32  `yaml:"min,omitempty"`
	Max         *uint32  `yaml:"max,omitempty"`
}

// ProductOverrides is the full override table for one product model, keyed
// by the canonical model name produced by structures.CanonicalModelName
// (e.g. "ecoMAX 860D3-HB").
type ProductOverrides struct {
	Model               string               `yaml:"model"`
	EcomaxParameters    []ParameterOverride  `yaml:"ecomax_parameters,omitempty"`
	MixerParameters     []ParameterOverride  `yaml:"mixer_parameters,omitempty"`
	ThermostatParameters []ParameterOverride `yaml:"thermostat_parameters,omitempty"`
}

// Config is the top-level document loaded from a dispatcher config file.
type Config struct {
	Dispatcher Dispatcher         `yaml:"dispatcher"`
	Products   []ProductOverrides `yaml:"products"`
}

// Load parses a YAML config document from path, filling in DefaultDispatcher
// for any zero-valued dispatcher fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML config document from raw bytes.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{Dispatcher: DefaultDispatcher}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "config: parse yaml")
	}
	if cfg.Dispatcher.RequiredRetries == 0 {
		cfg.Dispatcher.RequiredRetries = DefaultDispatcher.RequiredRetries
	}
	if cfg.Dispatcher.RequestTimeoutS == 0 {
		cfg.Dispatcher.RequestTimeoutS = DefaultDispatcher.RequestTimeoutS
	}
	if cfg.Dispatcher.SetupTimeoutS == 0 {
		cfg.Dispatcher.SetupTimeoutS = DefaultDispatcher.SetupTimeoutS
	}
	if cfg.Dispatcher.ReconnectDelayS == 0 {
		cfg.Dispatcher.ReconnectDelayS = DefaultDispatcher.ReconnectDelayS
	}
	return cfg, nil
}

// ForModel returns the override table for the given canonical model name,
// or nil if the config carries no overrides for it.
func (c *Config) ForModel(model string) *ProductOverrides {
	for i := range c.Products {
		if c.Products[i].Model == model {
			return &c.Products[i]
		}
	}
	return nil
}
