//go:build linux || darwin

package discovery

import (
	"net"
	"syscall"
)

// enableBroadcast sets SO_BROADCAST on the send socket; without it,
// sendto() to the limited broadcast address is refused by the kernel.
func enableBroadcast(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	if ctrlErr := raw.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1)
	}); ctrlErr != nil {
		return ctrlErr
	}
	return sockErr
}
