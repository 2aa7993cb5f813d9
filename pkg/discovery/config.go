// Package discovery implements the UDP-broadcast peer presence protocol:
// each running instance periodically announces itself and listens for
// peers of the same application type, notifying a registered listener.
package discovery

// BroadcastPort is the well-known port both send and receive use.
const BroadcastPort = 19000

// BroadcastAddr is the IPv4 limited broadcast address.
const BroadcastAddr = "255.255.255.255"

// Config describes one instance's announcement identity.
type Config struct {
	Type           string // application tag, e.g. "remote-desk"
	AdvertisedPort int
	Version        string
}

// Info is the peer announcement tuple delivered to a Listener.
type Info struct {
	Type    string
	ID      uint32
	IP      string
	Port    int
	Version string
}

// Listener is notified of peer announcements. The source spec holds this
// as a weak reference so a released listener is dropped rather than kept
// alive; Go's tracing GC has no equivalent of a dangling weak pointer, so
// the same intent is expressed explicitly here: SetListener(nil)
// unsubscribes, and there is otherwise exactly one owner of the
// registration at a time.
type Listener interface {
	OnFound(info Info)
}
