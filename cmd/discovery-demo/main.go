// discovery-demo runs the UDP broadcast presence service standalone,
// logging every peer it finds until interrupted. Run two copies on the
// same host with different CASTGRAPH_ADVERTISED_PORT values to see them
// find each other (spec.md §8 scenario S4).
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmshao/remote-desk/pkg/config"
	"github.com/lmshao/remote-desk/pkg/discovery"
)

type logListener struct {
	logger *slog.Logger
}

func (l *logListener) OnFound(info discovery.Info) {
	l.logger.Info("peer found", "id", info.ID, "ip", info.IP, "port", info.Port, "version", info.Version)
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load harness config", "error", err)
		os.Exit(-1)
	}

	svc := discovery.New(discovery.Config{
		Type:           cfg.Discovery.Type,
		AdvertisedPort: cfg.Discovery.AdvertisedPort,
		Version:        cfg.Discovery.Version,
	}, logger)
	svc.SetListener(&logListener{logger: logger})

	if err := svc.Start(); err != nil {
		logger.Error("discovery start failed", "error", err)
		os.Exit(-1)
	}
	logger.Info("discovery running", "id", svc.ID(), "advertised_port", cfg.Discovery.AdvertisedPort)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	svc.Stop()
}
