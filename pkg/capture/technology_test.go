package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTechnologyString(t *testing.T) {
	assert.Equal(t, "Auto", Auto.String())
	assert.Equal(t, "DesktopDuplication", DesktopDuplication.String())
	assert.Equal(t, "X11", X11.String())
	assert.Equal(t, "Wayland", Wayland.String())
	assert.Equal(t, "CoreGraphics", CoreGraphics.String())
}
