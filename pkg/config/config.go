// Package config loads process-level configuration for the example
// harnesses (cmd/*) from environment variables, grounded on
// api/pkg/config.LoadServerConfig: envconfig.Process into a plain struct
// with envconfig tags and defaults. Library-level config (capture.Config,
// scale.Config, ...) stays out of this package — those are assembled
// programmatically by callers, not sourced from the environment, exactly
// as helix keeps ServerConfig separate from its per-component structs.
package config

import "github.com/kelseyhightower/envconfig"

// HarnessConfig is the root configuration for the example cmd/ binaries.
type HarnessConfig struct {
	Capture   Capture
	Discovery Discovery
}

// Capture configures the demo capture -> convert -> scale pipeline.
type Capture struct {
	FrameRate     int    `envconfig:"CASTGRAPH_FRAME_RATE" default:"30"`
	Width         int    `envconfig:"CASTGRAPH_WIDTH" default:"0"`
	Height        int    `envconfig:"CASTGRAPH_HEIGHT" default:"0"`
	MonitorIndex  int    `envconfig:"CASTGRAPH_MONITOR_INDEX" default:"0"`
	CaptureCursor bool   `envconfig:"CASTGRAPH_CAPTURE_CURSOR" default:"false"`
	TargetWidth   int    `envconfig:"CASTGRAPH_TARGET_WIDTH" default:"1280"`
	TargetHeight  int    `envconfig:"CASTGRAPH_TARGET_HEIGHT" default:"720"`
	OutputDir     string `envconfig:"CASTGRAPH_OUTPUT_DIR" default:"."`
}

// Discovery configures the demo presence-broadcast service.
type Discovery struct {
	Type           string `envconfig:"CASTGRAPH_DISCOVERY_TYPE" default:"castgraph-demo"`
	Version        string `envconfig:"CASTGRAPH_DISCOVERY_VERSION" default:"1.0.0"`
	AdvertisedPort int    `envconfig:"CASTGRAPH_ADVERTISED_PORT" default:"9000"`
}

// Load reads HarnessConfig from the environment, applying the defaults
// above for anything unset.
func Load() (HarnessConfig, error) {
	var cfg HarnessConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return HarnessConfig{}, err
	}
	return cfg, nil
}
