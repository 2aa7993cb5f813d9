package capture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{FrameRate: 30, Width: 1920, Height: 1080, MonitorIndex: 0}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero frame rate", Config{FrameRate: 0}},
		{"negative frame rate", Config{FrameRate: -1}},
		{"negative width", Config{FrameRate: 30, Width: -1}},
		{"negative height", Config{FrameRate: 30, Height: -1}},
		{"negative monitor index", Config{FrameRate: 30, MonitorIndex: -1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			var capErr *Error
			assert.True(t, errors.As(err, &capErr))
			assert.Equal(t, ErrInvalidConfig, capErr.Kind)
		})
	}
}

func TestConfigZeroDimensionsAreValid(t *testing.T) {
	// Width/Height of 0 means "full monitor", not an error.
	assert.NoError(t, Config{FrameRate: 60}.Validate())
}
