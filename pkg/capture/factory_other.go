//go:build !linux && !windows && !darwin

package capture

// Factory has no backend on platforms outside linux/windows/darwin.
func Factory(tech Technology) (Engine, error) {
	return nil, &Error{Kind: NotSupported, Msg: "no capture backend for this platform"}
}
