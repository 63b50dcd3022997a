// Package config manages quoter configuration loading and validation.
package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coachpo/quoter/errs"
)

const (
	defaultAgentID       = "SUBMISSION"
	defaultPriceCap      = 100
	defaultFeatureCap    = 100
	defaultFillCapacity  = 20
	defaultRecencyWindow = 1000
	defaultSessionLength = 1_000_000
	defaultLearningRate  = 0.01
	defaultServiceName   = "quoter"
)

// HistoryConfig sizes the rolling price and feature buffers.
type HistoryConfig struct {
	PriceCap   int `yaml:"priceCap"`
	FeatureCap int `yaml:"featureCap"`
}

// FillsConfig sizes the own-execution memory.
type FillsConfig struct {
	Capacity      int   `yaml:"capacity"`
	RecencyWindow int64 `yaml:"recencyWindow"`
}

// SessionConfig describes the simulated trading session.
type SessionConfig struct {
	// Length is the timestamp at which directional risk appetite reaches its floor.
	Length int64 `yaml:"length"`
}

// ModelConfig tunes the online direction model.
type ModelConfig struct {
	LearningRate float64 `yaml:"learningRate"`
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig configures OTLP exporters (metrics only).
type TelemetryConfig struct {
	OTLPEndpoint  string `yaml:"otlpEndpoint"`
	ServiceName   string `yaml:"serviceName"`
	OTLPInsecure  bool   `yaml:"otlpInsecure"`
	EnableMetrics bool   `yaml:"enableMetrics"`
}

// AppConfig is the unified quoter configuration sourced from YAML.
type AppConfig struct {
	AgentID     string             `yaml:"agentId"`
	History     HistoryConfig      `yaml:"history"`
	Fills       FillsConfig        `yaml:"fills"`
	Session     SessionConfig      `yaml:"session"`
	Model       ModelConfig        `yaml:"model"`
	Logging     LoggingConfig      `yaml:"logging"`
	Telemetry   TelemetryConfig    `yaml:"telemetry"`
	Instruments []InstrumentConfig `yaml:"instruments"`
}

// Load reads and validates an AppConfig from the provided YAML file.
func Load(ctx context.Context, configPath string) (AppConfig, error) {
	_ = ctx

	reader, closer, err := openConfigFile(configPath)
	if err != nil {
		return AppConfig{}, err
	}
	defer closer()

	bytes, err := io.ReadAll(reader)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(bytes)
}

// Parse decodes, normalises and validates YAML configuration bytes.
func Parse(data []byte) (AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.normalise()

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c *AppConfig) normalise() {
	c.AgentID = strings.TrimSpace(c.AgentID)
	if c.AgentID == "" {
		c.AgentID = defaultAgentID
	}
	if c.History.PriceCap <= 0 {
		c.History.PriceCap = defaultPriceCap
	}
	if c.History.FeatureCap <= 0 {
		c.History.FeatureCap = defaultFeatureCap
	}
	if c.Fills.Capacity <= 0 {
		c.Fills.Capacity = defaultFillCapacity
	}
	if c.Fills.RecencyWindow <= 0 {
		c.Fills.RecencyWindow = defaultRecencyWindow
	}
	if c.Session.Length <= 0 {
		c.Session.Length = defaultSessionLength
	}
	if c.Model.LearningRate <= 0 {
		c.Model.LearningRate = defaultLearningRate
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	c.Telemetry.OTLPEndpoint = strings.TrimSpace(c.Telemetry.OTLPEndpoint)
	c.Telemetry.ServiceName = strings.TrimSpace(c.Telemetry.ServiceName)
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = defaultServiceName
	}
	for i := range c.Instruments {
		c.Instruments[i].normalise()
	}
}

// Validate performs semantic validation on the configuration.
func (c AppConfig) Validate() error {
	if len(c.Instruments) == 0 {
		return invalid("instruments required", "")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return invalid("logging format must be json or console", "")
	}

	symbols := make(map[string]struct{}, len(c.Instruments))
	for _, inst := range c.Instruments {
		if _, dup := symbols[inst.Symbol]; dup {
			return invalid("instrument configured twice", inst.Symbol)
		}
		symbols[inst.Symbol] = struct{}{}
	}

	for _, inst := range c.Instruments {
		if err := inst.validate(); err != nil {
			return errs.New("config", errs.CodeInvalid,
				errs.WithMessage("invalid instrument"),
				errs.WithField("symbol", inst.Symbol),
				errs.WithCause(err))
		}
		if w := inst.maxWindow(); w > c.History.PriceCap {
			return errs.New("config", errs.CodeInvalid,
				errs.WithMessage(fmt.Sprintf("strategy window %d exceeds history priceCap %d", w, c.History.PriceCap)),
				errs.WithField("symbol", inst.Symbol),
				errs.WithRemediation("raise history.priceCap"))
		}
		if inst.Strategy == KindBasket {
			for _, comp := range inst.Basket.Components {
				if _, ok := symbols[comp.Symbol]; !ok {
					return errs.New("config", errs.CodeInvalid,
						errs.WithMessage("basket component is not a configured instrument"),
						errs.WithField("symbol", inst.Symbol),
						errs.WithField("component", comp.Symbol))
				}
			}
		}
	}
	return nil
}

// Instrument returns the configuration for symbol.
func (c AppConfig) Instrument(symbol string) (InstrumentConfig, bool) {
	for _, inst := range c.Instruments {
		if inst.Symbol == symbol {
			return inst, true
		}
	}
	return InstrumentConfig{}, false
}

func invalid(message, symbol string) error {
	opts := []errs.Option{errs.WithMessage(message)}
	if symbol != "" {
		opts = append(opts, errs.WithField("symbol", symbol))
	}
	return errs.New("config", errs.CodeInvalid, opts...)
}

func openConfigFile(path string) (io.Reader, func(), error) {
	candidate := strings.TrimSpace(path)
	candidate = filepath.Clean(candidate)

	file, err := os.Open(candidate) // #nosec G304 -- path is operator controlled.
	if err != nil {
		return nil, nil, fmt.Errorf("open app config: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}
