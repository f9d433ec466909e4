package publishers

import (
	"context"
	"fmt"
	"io"
	"os"
)

// TypeWriter is the type reported by writer publishers. It is not available in config files.
const TypeWriter = "writer"

// writerPublisher prints the plain-text digest. Used for dry runs.
type writerPublisher struct {
	id string
	w  io.Writer
}

// NewWriterPublisher returns a publisher that writes the subject and text body to w (stdout when nil).
func NewWriterPublisher(id string, w io.Writer) Publisher {
	if w == nil {
		w = os.Stdout
	}
	return &writerPublisher{id: id, w: w}
}

func (p *writerPublisher) ID() string   { return p.id }
func (p *writerPublisher) Type() string { return TypeWriter }

// Publish writes the message. The context is only checked before writing.
func (p *writerPublisher) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(p.w, "Subject: %s\n\n%s\n", msg.Subject, msg.Text); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	return nil
}
