package broadcast

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// ConnObserver tracks connection state. A nil ConnObserver is allowed.
type ConnObserver interface {
	SetNATSConnected(up bool)
}

// NATSPublisher publishes raw payloads on a NATS connection.
type NATSPublisher struct {
	nc *nats.Conn
}

// Connect dials url and keeps reconnecting in the background.
func Connect(url string, obs ConnObserver, logger *slog.Logger) (*NATSPublisher, error) {
	set := func(up bool) {
		if obs != nil {
			obs.SetNATSConnected(up)
		}
	}
	nc, err := nats.Connect(url,
		nats.Name("transitboard"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			set(false)
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			set(true)
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			set(false)
			logger.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	set(true)
	logger.Info("nats connected", "url", nc.ConnectedUrl())
	return &NATSPublisher{nc: nc}, nil
}

func (p *NATSPublisher) Publish(subject string, data []byte) error {
	return p.nc.Publish(subject, data)
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	err := p.nc.Drain()
	p.nc.Close()
	return err
}
