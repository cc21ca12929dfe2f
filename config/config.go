// Package config loads process configuration from the environment,
// with an optional .env file for local runs. The logger in cmd is set
// from its own --log-level/--log-json flags and does not read
// LogLevel or LogJSON.
package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config is the process-wide configuration surface. Pipe-level
// parameters (codec, dimensions) travel through pipeline.DecoderConfig
// instead; this struct holds only cross-cutting defaults.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON   bool   `envconfig:"LOG_JSON" default:"false"`

	ForcedRenderer       string `envconfig:"FORCED_RENDERER" default:""`
	HardwareAcceleration string `envconfig:"HARDWARE_ACCELERATION" default:"prefer-hardware"`

	OpusSampleRate int `envconfig:"OPUS_SAMPLE_RATE" default:"48000"`
	OpusChannels   int `envconfig:"OPUS_CHANNELS" default:"2"`

	// IdrQueueDelayThresholdMs and IdrQueueSizeThreshold default to the
	// two thresholds of the SPEC_FULL §4.2 hysteresis formula;
	// stats.IdrPolicy uses its own fixed 200ms and 2 and does not read
	// these fields.
	IdrQueueDelayThresholdMs int `envconfig:"IDR_QUEUE_DELAY_THRESHOLD_MS" default:"200"`
	IdrQueueSizeThreshold    int `envconfig:"IDR_QUEUE_SIZE_THRESHOLD" default:"2"`
}

const envPrefix = "STREAMCORE"

// Load reads a .env file if present (missing is not an error) and then
// the process environment, the latter taking precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
