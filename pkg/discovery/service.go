package discovery

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const (
	broadcastInterval = 1000 * time.Millisecond
	pollInterval      = 100 * time.Millisecond
	maxDatagramSize   = 512
)

// Service is the UDP-broadcast presence announcer and listener. Its
// lifecycle is the spec's Idle -> Running -> Idle state machine: Start
// spawns a worker and returns immediately, Stop signals and joins.
type Service struct {
	cfg    Config
	id     uint32
	logger *slog.Logger

	mu       sync.Mutex
	listener Listener

	running atomic.Bool
	stop    chan struct{}
	wg      sync.WaitGroup

	recvConn net.PacketConn
	sendConn *net.UDPConn
}

// New constructs a Service with a random 32-bit self identifier generated
// once, per the spec's construction-time id allocation.
func New(cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:    cfg,
		id:     rand.Uint32(),
		logger: logger.With("component", "discovery"),
	}
}

// ID returns this instance's self identifier.
func (s *Service) ID() uint32 { return s.id }

// SetListener installs the peer-found callback, replacing any previous
// one. Pass nil to unsubscribe.
func (s *Service) SetListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

func (s *Service) IsRunning() bool { return s.running.Load() }

// Start binds the receive socket, opens a broadcast-enabled send socket,
// and spawns the worker goroutine. Idempotent.
func (s *Service) Start() error {
	if s.running.Load() {
		return nil
	}

	recvConn, err := listenReceive(fmt.Sprintf(":%d", BroadcastPort))
	if err != nil {
		s.logger.Error("failed to bind discovery receive socket", "port", BroadcastPort, "error", err)
		return fmt.Errorf("discovery: bind :%d: %w", BroadcastPort, err)
	}

	sendConn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		recvConn.Close()
		return fmt.Errorf("discovery: open send socket: %w", err)
	}
	if err := enableBroadcast(sendConn); err != nil {
		recvConn.Close()
		sendConn.Close()
		return fmt.Errorf("discovery: enable SO_BROADCAST: %w", err)
	}

	s.recvConn = recvConn
	s.sendConn = sendConn
	s.stop = make(chan struct{})

	s.running.Store(true)
	s.wg.Add(2)
	go s.broadcastLoop()
	go s.receiveLoop()
	return nil
}

// Stop signals the worker goroutines, joins them, and closes both sockets.
func (s *Service) Stop() {
	if !s.running.Load() {
		return
	}
	s.running.Store(false)
	close(s.stop)
	s.recvConn.Close()
	s.wg.Wait()
	s.sendConn.Close()
}

func (s *Service) broadcastLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	msg := encode(s.cfg.Type, s.id, s.cfg.AdvertisedPort, s.cfg.Version)
	dst := &net.UDPAddr{IP: net.ParseIP(BroadcastAddr), Port: BroadcastPort}

	var lastSend time.Time
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if time.Since(lastSend) < broadcastInterval {
				continue
			}
			lastSend = time.Now()
			if _, err := s.sendConn.WriteToUDP([]byte(msg), dst); err != nil {
				s.logger.Warn("discovery broadcast send failed", "error", err)
			}
		}
	}
}

func (s *Service) receiveLoop() {
	defer s.wg.Done()
	buf := make([]byte, maxDatagramSize)

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		s.recvConn.SetReadDeadline(time.Now().Add(pollInterval))
		n, addr, err := s.recvConn.ReadFrom(buf)
		if err != nil {
			if s.running.Load() {
				continue // timeout or transient error; poll cadence keeps shutdown responsive
			}
			return
		}

		info, ok := decode(string(buf[:n]))
		if !ok {
			s.logger.Warn("discovery: malformed datagram", "from", addr)
			continue
		}
		if info.ID == s.id || info.Type != s.cfg.Type {
			continue
		}

		if udpAddr, ok := addr.(*net.UDPAddr); ok {
			info.IP = udpAddr.IP.String()
		}

		s.mu.Lock()
		listener := s.listener
		s.mu.Unlock()
		if listener != nil {
			listener.OnFound(info)
		}
	}
}

