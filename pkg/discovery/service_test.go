package discovery

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	mu    sync.Mutex
	found []Info
}

func (r *recordingListener) OnFound(info Info) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.found = append(r.found, info)
}

func (r *recordingListener) snapshot() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Info, len(r.found))
	copy(out, r.found)
	return out
}

// TestTwoInstancesDiscoverEachOther is the spec's S4 scenario: two Service
// instances on the same host, each bound to the shared broadcast port via
// SO_REUSEADDR/SO_REUSEPORT, each advertising a distinct port and each
// discovering only the other (never itself).
func TestTwoInstancesDiscoverEachOther(t *testing.T) {
	a := New(Config{Type: "remote-desk", AdvertisedPort: 7001, Version: "1.0.0"}, nil)
	b := New(Config{Type: "remote-desk", AdvertisedPort: 7002, Version: "1.0.0"}, nil)

	listenerA := &recordingListener{}
	listenerB := &recordingListener{}
	a.SetListener(listenerA)
	b.SetListener(listenerB)

	require.NoError(t, a.Start())
	defer a.Stop()
	require.NoError(t, b.Start())
	defer b.Stop()

	require.Eventually(t, func() bool {
		return len(listenerA.snapshot()) > 0 && len(listenerB.snapshot()) > 0
	}, 5*time.Second, 50*time.Millisecond)

	foundByA := listenerA.snapshot()[0]
	assert.Equal(t, b.ID(), foundByA.ID)
	assert.Equal(t, 7002, foundByA.Port)
	assert.Equal(t, "remote-desk", foundByA.Type)
	assert.Equal(t, "1.0.0", foundByA.Version)

	foundByB := listenerB.snapshot()[0]
	assert.Equal(t, a.ID(), foundByB.ID)
	assert.Equal(t, 7001, foundByB.Port)

	for _, info := range listenerA.snapshot() {
		assert.NotEqual(t, a.ID(), info.ID, "service must never report itself")
	}
	for _, info := range listenerB.snapshot() {
		assert.NotEqual(t, b.ID(), info.ID, "service must never report itself")
	}
}

func TestServiceIgnoresDifferentType(t *testing.T) {
	a := New(Config{Type: "remote-desk", AdvertisedPort: 7003, Version: "1.0.0"}, nil)
	c := New(Config{Type: "other-service", AdvertisedPort: 7004, Version: "1.0.0"}, nil)

	listenerA := &recordingListener{}
	a.SetListener(listenerA)

	require.NoError(t, a.Start())
	defer a.Stop()
	require.NoError(t, c.Start())
	defer c.Stop()

	time.Sleep(1200 * time.Millisecond)

	for _, info := range listenerA.snapshot() {
		assert.NotEqual(t, c.ID(), info.ID, "cross-type broadcasts must not be delivered")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	s := New(Config{Type: "remote-desk", AdvertisedPort: 7005, Version: "1.0.0"}, nil)
	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	s.Stop()
	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestSetListenerNilUnsubscribes(t *testing.T) {
	s := New(Config{Type: "remote-desk", AdvertisedPort: 7006, Version: "1.0.0"}, nil)
	listener := &recordingListener{}
	s.SetListener(listener)
	s.SetListener(nil)

	require.NoError(t, s.Start())
	defer s.Stop()
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, listener.snapshot())
}
