package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Capture.FrameRate)
	assert.Equal(t, 1280, cfg.Capture.TargetWidth)
	assert.Equal(t, 720, cfg.Capture.TargetHeight)
	assert.Equal(t, "castgraph-demo", cfg.Discovery.Type)
	assert.Equal(t, 9000, cfg.Discovery.AdvertisedPort)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	os.Setenv("CASTGRAPH_FRAME_RATE", "60")
	os.Setenv("CASTGRAPH_DISCOVERY_TYPE", "my-app")
	defer os.Unsetenv("CASTGRAPH_FRAME_RATE")
	defer os.Unsetenv("CASTGRAPH_DISCOVERY_TYPE")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Capture.FrameRate)
	assert.Equal(t, "my-app", cfg.Discovery.Type)
}
