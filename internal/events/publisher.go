// Package events publishes ticket lifecycle notifications on NATS
// JetStream. Publication is best-effort: the engine's convergence
// never depends on an event being delivered.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"bridge-syncer/internal/config"
	"bridge-syncer/internal/metrics"
	"bridge-syncer/internal/models"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const (
	SubjectTicketFinalized = "bridge.ticket.finalized"
	SubjectTicketDemoted   = "bridge.ticket.demoted"
)

// Publisher emits ticket lifecycle events.
type Publisher interface {
	TicketFinalized(ticket *models.Ticket)
	TicketDemoted(tombstone *models.DeletedTicket)
	Close()
}

// TicketEvent is the published payload.
type TicketEvent struct {
	EventID   string    `json:"event_id"`
	TicketID  string    `json:"ticket_id"`
	DstChain  string    `json:"dst_chain"`
	Status    string    `json:"status"`
	TxHash    *string   `json:"tx_hash,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

// NATSPublisher publishes events on a JetStream stream.
type NATSPublisher struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	log    *logrus.Entry
	stream string
}

// NewNATSPublisher connects to NATS and ensures the event stream
// exists. Reconnects are handled by the client indefinitely.
func NewNATSPublisher(cfg config.NATSConfig, log *logrus.Entry) (*NATSPublisher, error) {
	timeout := 10 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Timeout(timeout),
		nats.ReconnectWait(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(cfg.StreamName); err != nil {
		if _, err := js.AddStream(&nats.StreamConfig{
			Name:     cfg.StreamName,
			Subjects: []string{"bridge.ticket.>"},
		}); err != nil {
			conn.Close()
			return nil, fmt.Errorf("create stream %s: %w", cfg.StreamName, err)
		}
	}

	return &NATSPublisher{conn: conn, js: js, log: log, stream: cfg.StreamName}, nil
}

func (p *NATSPublisher) publish(subject string, event TicketEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.WithError(err).WithField("subject", subject).Warn("failed to marshal event")
		return
	}
	if _, err := p.js.Publish(subject, payload); err != nil {
		p.log.WithError(err).WithField("subject", subject).Warn("failed to publish event")
		return
	}
	metrics.EventsPublished.WithLabelValues(subject).Inc()
}

// TicketFinalized publishes a finalization notification
func (p *NATSPublisher) TicketFinalized(ticket *models.Ticket) {
	p.publish(SubjectTicketFinalized, TicketEvent{
		EventID:   uuid.NewString(),
		TicketID:  ticket.TicketID,
		DstChain:  ticket.DstChain,
		Status:    string(models.TicketStatusFinalized),
		TxHash:    ticket.TxHash,
		EmittedAt: time.Now().UTC(),
	})
}

// TicketDemoted publishes a tombstone demotion notification
func (p *NATSPublisher) TicketDemoted(tombstone *models.DeletedTicket) {
	p.publish(SubjectTicketDemoted, TicketEvent{
		EventID:   uuid.NewString(),
		TicketID:  tombstone.TicketID,
		DstChain:  tombstone.DstChain,
		Status:    string(tombstone.Status),
		EmittedAt: time.Now().UTC(),
	})
}

// Close drains the connection
func (p *NATSPublisher) Close() {
	p.conn.Close()
}

// NopPublisher is used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) TicketFinalized(*models.Ticket)      {}
func (NopPublisher) TicketDemoted(*models.DeletedTicket) {}
func (NopPublisher) Close()                              {}
