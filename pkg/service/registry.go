package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// entry is the registry's per-descriptor record: {descriptor, creator,
// instance?, is_running} from spec.md §4.8. instance is nil until the
// first StartService call creates it.
type entry struct {
	descriptor string
	creator    Creator
	instanceID uint64

	mu        sync.Mutex
	instance  Service
	running   bool
	taskQueue *taskQueue
}

// Registry is the process-wide service directory. The zero value is not
// usable; construct with NewRegistry or use the package-level Default.
type Registry struct {
	entries sync.Map // map[string]*entry

	eventMu  sync.Mutex
	eventCb  EventCallback
}

// NewRegistry constructs an empty registry. Most callers should use the
// process-wide Default registry instead, mirroring the teacher's single
// globalRegistry instance (api/pkg/desktop/session_registry.go).
func NewRegistry() *Registry {
	return &Registry{}
}

// Default is the process-wide registry, the Go rendition of spec.md's
// "register at static construction via a delegator holder": concrete
// services register themselves here from an init() function in their
// own package.
var Default = NewRegistry()

// Register adds a descriptor -> creator binding. Returns false if the
// descriptor is already registered; descriptors must be unique.
func (r *Registry) Register(descriptor string, creator Creator) bool {
	e := &entry{descriptor: descriptor, creator: creator, instanceID: newInstanceID()}
	_, loaded := r.entries.LoadOrStore(descriptor, e)
	return !loaded
}

// Unregister stops the instance (if running) and removes the entry,
// tearing down its task queue.
func (r *Registry) Unregister(descriptor string) {
	v, ok := r.entries.LoadAndDelete(descriptor)
	if !ok {
		return
	}
	e := v.(*entry)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.instance != nil && e.running {
		e.instance.Stop()
		e.running = false
	}
	if e.taskQueue != nil {
		e.taskQueue.close()
		e.taskQueue = nil
	}
}

func (r *Registry) lookup(descriptor string) (*entry, bool) {
	v, ok := r.entries.Load(descriptor)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

// StartService lazily constructs the instance (if not already built),
// initializes it, and starts it. Returns false if the descriptor is
// unknown, Initialize fails, or Start fails.
func (r *Registry) StartService(descriptor string) bool {
	e, ok := r.lookup(descriptor)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return true
	}
	if e.instance == nil {
		e.instance = e.creator()
	}
	if !e.instance.Initialize() {
		return false
	}
	if !e.instance.Start() {
		return false
	}
	e.running = true
	return true
}

// StopService stops a running instance. No-op if the descriptor is
// unknown or the instance is not running.
func (r *Registry) StopService(descriptor string) {
	e, ok := r.lookup(descriptor)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.instance != nil && e.running {
		e.instance.Stop()
		e.running = false
	}
}

// StartAll starts every registered service. Returns true only if every
// service started successfully; services that already succeeded remain
// running (no rollback), matching the partial-start behavior the spec
// documents for the pipeline itself (§9 Q1).
func (r *Registry) StartAll() bool {
	ok := true
	r.entries.Range(func(key, _ any) bool {
		if !r.StartService(key.(string)) {
			ok = false
		}
		return true
	})
	return ok
}

// StopAll stops every registered, running service.
func (r *Registry) StopAll() {
	r.entries.Range(func(key, _ any) bool {
		r.StopService(key.(string))
		return true
	})
}

func (r *Registry) IsServiceRunning(descriptor string) bool {
	e, ok := r.lookup(descriptor)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (r *Registry) GetServiceInfo(descriptor string) (Info, bool) {
	e, ok := r.lookup(descriptor)
	if !ok {
		return Info{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return Info{Descriptor: e.descriptor, IsRunning: e.running}, true
}

func (r *Registry) GetAllServices() []Info {
	var out []Info
	r.entries.Range(func(_, v any) bool {
		e := v.(*entry)
		e.mu.Lock()
		out = append(out, Info{Descriptor: e.descriptor, IsRunning: e.running})
		e.mu.Unlock()
		return true
	})
	return out
}

func (r *Registry) GetServiceCount() int {
	n := 0
	r.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// SetEventCallback installs the single sink for every service's
// NotifyMain publications. Pass nil to clear it.
func (r *Registry) SetEventCallback(cb EventCallback) {
	r.eventMu.Lock()
	defer r.eventMu.Unlock()
	r.eventCb = cb
}

// NotifyMain enqueues a Message onto the publishing service's own task
// queue so the registered EventCallback runs off the producer's
// goroutine, per spec.md §4.8.
func (r *Registry) NotifyMain(descriptor, event string, data any) {
	e, ok := r.lookup(descriptor)
	if !ok {
		return
	}
	tq := r.taskQueueFor(e)
	tq.enqueue(func() {
		r.eventMu.Lock()
		cb := r.eventCb
		r.eventMu.Unlock()
		if cb != nil {
			cb(Message{Sender: descriptor, Event: event, Data: data})
		}
	})
}

// EnqueueTask schedules fn on the named service's per-service task
// queue, optionally delayed. The queue is created lazily on first use.
func (r *Registry) EnqueueTask(descriptor string, fn func(), delay time.Duration) error {
	e, ok := r.lookup(descriptor)
	if !ok {
		return fmt.Errorf("service: unknown descriptor %q", descriptor)
	}
	r.taskQueueFor(e).enqueueDelayed(fn, delay)
	return nil
}

func (r *Registry) taskQueueFor(e *entry) *taskQueue {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.taskQueue == nil {
		e.taskQueue = newTaskQueue()
	}
	return e.taskQueue
}

// newInstanceID allocates a process-unique 64-bit handle for a registry
// entry. The spec permits either a counter or another process-unique
// scheme for this kind of identity (§3); a random UUID truncated to 64
// bits is used here, the same way recording.go mints session IDs,
// because unlike graph node IDs (a hot-path atomic counter) these are
// allocated once per service and never compared across process restarts.
func newInstanceID() uint64 {
	id := uuid.New()
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(id[i])
	}
	return v
}
