//go:build linux

package capture

import (
	"os"

	"github.com/lmshao/remote-desk/pkg/capture/portal"
	"github.com/lmshao/remote-desk/pkg/capture/x11"
)

// Factory resolves tech to a concrete Engine for the current platform. Auto
// picks X11 when DISPLAY is set, falling back to the reserved Wayland
// portal backend otherwise.
func Factory(tech Technology) (Engine, error) {
	switch tech {
	case Auto:
		if os.Getenv("DISPLAY") != "" {
			return x11.New(), nil
		}
		return portal.New(), nil
	case X11:
		return x11.New(), nil
	case Wayland:
		return portal.New(), nil
	default:
		return nil, &Error{Kind: NotSupported, Msg: tech.String() + " is not available on linux"}
	}
}
