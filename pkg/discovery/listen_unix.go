//go:build linux || darwin

package discovery

import (
	"context"
	"net"
	"syscall"
)

// listenReceive binds the discovery receive port with SO_REUSEADDR and
// SO_REUSEPORT so more than one instance on the same host (the spec's S4
// two-instances-on-one-host scenario) can each bind :19000 and each still
// receive broadcast datagrams independently.
func listenReceive(addr string) (net.PacketConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
				sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	return lc.ListenPacket(context.Background(), "udp4", addr)
}
