package publishers

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// mailClient is the subset of the go-mail client used by the SMTP publisher.
type mailClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// smtpPublisher emails the digest as a multipart/alternative message.
type smtpPublisher struct {
	id     string
	typ    string
	from   string
	to     []string
	client mailClient
	log    Logger
}

// newSMTPPublisher builds an SMTP publisher from config.
func newSMTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SMTP == nil {
		return nil, fmt.Errorf("publisher %q missing smtp configuration", cfg.ID)
	}

	client, err := newMailClient(cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("create smtp client for publisher %q: %w", cfg.ID, err)
	}

	return &smtpPublisher{
		id:     cfg.ID,
		typ:    cfg.Type,
		from:   cfg.SMTP.From,
		to:     cfg.SMTP.To,
		client: client,
		log:    ensureLogger(log),
	}, nil
}

func newMailClient(cfg *SMTPPublisherConfig) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
	}

	switch cfg.Security {
	case SMTPSecuritySSL:
		opts = append(opts, mail.WithSSL())
	case SMTPSecurityStartTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	case SMTPSecurityNone:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	return mail.NewClient(cfg.Host, opts...)
}

func (p *smtpPublisher) ID() string   { return p.id }
func (p *smtpPublisher) Type() string { return p.typ }

// Publish sends the message with both the plain-text and HTML bodies.
func (p *smtpPublisher) Publish(ctx context.Context, msg Message) error {
	m, err := p.buildMessage(msg)
	if err != nil {
		return err
	}

	p.log.InfoObj("sending digest email", "publisher_smtp_send", map[string]any{
		"publisher_id": p.id,
		"recipients":   len(p.to),
	})

	if err := p.client.DialAndSendWithContext(ctx, m); err != nil {
		p.log.ErrorObj("smtp publisher send failed", "publisher_smtp_error", map[string]any{
			"publisher_id": p.id,
			"error":        err.Error(),
		})
		return fmt.Errorf("send email: %w", err)
	}

	p.log.DebugObj("smtp publisher delivered digest", "publisher_smtp_delivery", map[string]any{
		"publisher_id": p.id,
	})
	return nil
}

func (p *smtpPublisher) buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(p.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(p.to...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	m.Subject(msg.Subject)
	if !msg.Date.IsZero() {
		m.SetDateWithValue(msg.Date)
	}
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}
