package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	mu         sync.Mutex
	running    bool
	initCalled bool
	initFails  bool
	startFails bool
}

func (s *stubService) Initialize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initCalled = true
	return !s.initFails
}

func (s *stubService) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startFails {
		return false
	}
	s.running = true
	return true
}

func (s *stubService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

func (s *stubService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Register("alpha", func() Service { return &stubService{} }))
	assert.False(t, r.Register("alpha", func() Service { return &stubService{} }))
	assert.Equal(t, 1, r.GetServiceCount())
}

func TestStartStopService(t *testing.T) {
	r := NewRegistry()
	var built *stubService
	r.Register("alpha", func() Service {
		built = &stubService{}
		return built
	})

	assert.False(t, r.IsServiceRunning("alpha"))
	assert.True(t, r.StartService("alpha"))
	assert.True(t, r.IsServiceRunning("alpha"))
	require.NotNil(t, built)
	assert.True(t, built.initCalled)

	r.StopService("alpha")
	assert.False(t, r.IsServiceRunning("alpha"))
}

func TestStartServiceFailuresPropagate(t *testing.T) {
	r := NewRegistry()
	r.Register("bad-init", func() Service { return &stubService{initFails: true} })
	r.Register("bad-start", func() Service { return &stubService{startFails: true} })

	assert.False(t, r.StartService("bad-init"))
	assert.False(t, r.StartService("bad-start"))
	assert.False(t, r.IsServiceRunning("bad-init"))
	assert.False(t, r.IsServiceRunning("bad-start"))
}

func TestStartAllStopAll(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func() Service { return &stubService{} })
	r.Register("b", func() Service { return &stubService{} })

	assert.True(t, r.StartAll())
	assert.True(t, r.IsServiceRunning("a"))
	assert.True(t, r.IsServiceRunning("b"))

	r.StopAll()
	assert.False(t, r.IsServiceRunning("a"))
	assert.False(t, r.IsServiceRunning("b"))
}

func TestStartAllPartialFailureLeavesOthersRunning(t *testing.T) {
	r := NewRegistry()
	r.Register("good", func() Service { return &stubService{} })
	r.Register("bad", func() Service { return &stubService{startFails: true} })

	assert.False(t, r.StartAll())
	assert.True(t, r.IsServiceRunning("good"))
	assert.False(t, r.IsServiceRunning("bad"))
}

func TestUnregisterStopsAndDrops(t *testing.T) {
	r := NewRegistry()
	var built *stubService
	r.Register("alpha", func() Service {
		built = &stubService{}
		return built
	})
	r.StartService("alpha")
	r.Unregister("alpha")

	_, found := r.GetServiceInfo("alpha")
	assert.False(t, found)
	assert.False(t, built.IsRunning())
	assert.Equal(t, 0, r.GetServiceCount())
}

func TestGetAllServicesAndInfo(t *testing.T) {
	r := NewRegistry()
	r.Register("alpha", func() Service { return &stubService{} })
	r.StartService("alpha")

	info, ok := r.GetServiceInfo("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", info.Descriptor)
	assert.True(t, info.IsRunning)

	all := r.GetAllServices()
	assert.Len(t, all, 1)
}

func TestNotifyMainRunsOffProducerGoroutine(t *testing.T) {
	r := NewRegistry()
	r.Register("alpha", func() Service { return &stubService{} })

	var (
		mu        sync.Mutex
		gotSender string
		gotEvent  string
	)
	done := make(chan struct{})
	r.SetEventCallback(func(msg Message) {
		mu.Lock()
		gotSender = msg.Sender
		gotEvent = msg.Event
		mu.Unlock()
		close(done)
	})

	r.NotifyMain("alpha", "ready", 42)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event callback was never invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "alpha", gotSender)
	assert.Equal(t, "ready", gotEvent)
}

func TestEnqueueTaskRunsAfterDelay(t *testing.T) {
	r := NewRegistry()
	r.Register("alpha", func() Service { return &stubService{} })

	ran := make(chan struct{})
	err := r.EnqueueTask("alpha", func() { close(ran) }, 20*time.Millisecond)
	require.NoError(t, err)

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("deferred task never ran")
	}
}

func TestEnqueueTaskUnknownDescriptor(t *testing.T) {
	r := NewRegistry()
	err := r.EnqueueTask("missing", func() {}, 0)
	assert.Error(t, err)
}

func TestNewInstanceIDsAreUnique(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		id := newInstanceID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
