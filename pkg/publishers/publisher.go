package publishers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

// ErrNoPublishers is returned when delivery is attempted without any publisher.
var ErrNoPublishers = errors.New("no publishers configured")

// Logger is the logging facade used by publishers.
type Logger = logger.Logger

// Message is one rendered digest ready for delivery.
type Message struct {
	Subject       string    `json:"subject"`
	Text          string    `json:"text"`
	HTML          string    `json:"html"`
	Date          time.Time `json:"date"`
	HeadlineCount int       `json:"headline_count"`
}

// Publisher delivers a digest message to one destination.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, msg Message) error
}

// Deliver hands the message to every publisher. It succeeds only when all of them do;
// the failures are joined into the returned error.
func Deliver(ctx context.Context, pubs []Publisher, msg Message, log Logger) error {
	log = ensureLogger(log)
	if len(pubs) == 0 {
		return ErrNoPublishers
	}

	var errs []error
	for _, pub := range pubs {
		if err := pub.Publish(ctx, msg); err != nil {
			log.ErrorObj("publisher delivery failed", "publisher_error", map[string]any{
				"publisher_id": pub.ID(),
				"type":         pub.Type(),
				"error":        err.Error(),
			})
			errs = append(errs, fmt.Errorf("publisher %q: %w", pub.ID(), err))
			continue
		}
		log.InfoObj("digest delivered", "publisher_delivered", map[string]any{
			"publisher_id": pub.ID(),
			"type":         pub.Type(),
			"headlines":    msg.HeadlineCount,
		})
	}

	return errors.Join(errs...)
}

func ensureLogger(log Logger) Logger {
	return logger.Ensure(log)
}
