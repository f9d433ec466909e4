package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

const digestDateLayout = "2006-01-02"

// queueSender abstracts provider-specific queue senders.
type queueSender interface {
	Send(ctx context.Context, msg Message) error
}

// queuePublisher hands the digest to a cloud queue or topic for downstream consumers.
type queuePublisher struct {
	id       string
	typ      string
	provider string
	sender   queueSender
	log      Logger
}

// newQueuePublisher creates a queue publisher for the configured provider.
func newQueuePublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("publisher %q missing queue configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var (
		sender queueSender
		err    error
	)

	switch cfg.Queue.Provider {
	case QueueProviderAWSSQS:
		sender, err = newAWSSQSSender(ctx, cfg.Queue.AWS, log)
	case QueueProviderAWSSNS:
		sender, err = newAWSSNSSender(ctx, cfg.Queue.SNS, log)
	case QueueProviderGCP:
		sender, err = newGCPPubSubSender(ctx, cfg.Queue.GCP, log)
	default:
		err = fmt.Errorf("queue provider %q is not supported", cfg.Queue.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &queuePublisher{
		id:       cfg.ID,
		typ:      cfg.Type,
		provider: cfg.Queue.Provider,
		sender:   sender,
		log:      ensureLogger(log),
	}, nil
}

func (p *queuePublisher) ID() string   { return p.id }
func (p *queuePublisher) Type() string { return p.typ }

// Publish forwards the message to the configured queue provider.
func (p *queuePublisher) Publish(ctx context.Context, msg Message) error {
	if err := p.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("queue provider %s send failed: %w", p.provider, err)
	}
	return nil
}

// encodeMessage serializes the message and derives the attributes every queue provider attaches.
func encodeMessage(msg Message) ([]byte, map[string]string, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal message: %w", err)
	}

	attrs := map[string]string{
		"headline_count": strconv.Itoa(msg.HeadlineCount),
	}
	if !msg.Date.IsZero() {
		attrs["digest_date"] = msg.Date.Format(digestDateLayout)
	}
	return payload, attrs, nil
}
