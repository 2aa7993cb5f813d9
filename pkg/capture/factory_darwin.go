//go:build darwin

package capture

import (
	"github.com/lmshao/remote-desk/pkg/capture/coregraphics"
)

// Factory resolves tech to a concrete Engine for the current platform. Auto
// and CoreGraphics both select the reserved CoreGraphics backend, which
// reports NotSupported for every operation until implemented.
func Factory(tech Technology) (Engine, error) {
	switch tech {
	case Auto, CoreGraphics:
		return coregraphics.New(), nil
	default:
		return nil, &Error{Kind: NotSupported, Msg: tech.String() + " is not available on darwin"}
	}
}
