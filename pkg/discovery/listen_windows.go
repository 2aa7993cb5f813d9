//go:build windows

package discovery

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/windows"
)

// listenReceive binds the discovery receive port with SO_REUSEADDR, the
// Winsock option that lets more than one instance on the same host bind
// :19000 (there is no direct SO_REUSEPORT equivalent on Windows).
func listenReceive(addr string) (net.PacketConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	return lc.ListenPacket(context.Background(), "udp4", addr)
}
