//go:build windows

package capture

import (
	"github.com/lmshao/remote-desk/pkg/capture/ddup"
)

// Factory resolves tech to a concrete Engine for the current platform. Auto
// and DesktopDuplication both select the Desktop Duplication backend, the
// only capture path implemented on Windows.
func Factory(tech Technology) (Engine, error) {
	switch tech {
	case Auto, DesktopDuplication:
		return ddup.New(), nil
	default:
		return nil, &Error{Kind: NotSupported, Msg: tech.String() + " is not available on windows"}
	}
}
