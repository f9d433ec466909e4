package publishers

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/wneessen/go-mail"
)

type fakeMailClient struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeMailClient) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	f.sent = append(f.sent, messages...)
	return f.err
}

func newTestSMTPPublisher(client mailClient) *smtpPublisher {
	return &smtpPublisher{
		id:     "gmail",
		typ:    TypeSMTP,
		from:   "digest@example.com",
		to:     []string{"reader@example.com"},
		client: client,
		log:    ensureLogger(nil),
	}
}

func TestSMTPPublisherSendsMultipartMessage(t *testing.T) {
	client := &fakeMailClient{}
	pub := newTestSMTPPublisher(client)

	err := pub.Publish(context.Background(), Message{
		Subject: "Daily News Digest - March 09, 2026",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
		Date:    time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(client.sent))

	m := client.sent[0]
	assert.Equal(t, []string{"Daily News Digest - March 09, 2026"}, m.GetGenHeader(mail.HeaderSubject))

	rcpts, err := m.GetRecipients()
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"reader@example.com"}, rcpts)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	assert.Equal(t, nil, err)
	raw := buf.String()
	assert.Equal(t, true, strings.Contains(raw, "multipart/alternative"))
	assert.Equal(t, true, strings.Contains(raw, "plain body"))
	assert.Equal(t, true, strings.Contains(raw, "html body"))
}

func TestSMTPPublisherReportsSendFailure(t *testing.T) {
	boom := errors.New("535 authentication failed")
	pub := newTestSMTPPublisher(&fakeMailClient{err: boom})

	err := pub.Publish(context.Background(), Message{Subject: "s", Text: "t"})
	assert.Equal(t, true, errors.Is(err, boom))
}

func TestSMTPPublisherRejectsBadAddress(t *testing.T) {
	client := &fakeMailClient{}
	pub := newTestSMTPPublisher(client)
	pub.to = []string{"not an address"}

	err := pub.Publish(context.Background(), Message{Subject: "s", Text: "t"})
	assert.NotEqual(t, nil, err)
	assert.Equal(t, 0, len(client.sent))
}

func TestNewSMTPPublisherFromConfig(t *testing.T) {
	reg, err := NewConfigRegistry([]PublisherConfig{{
		ID:   "gmail",
		Type: TypeSMTP,
		SMTP: &SMTPPublisherConfig{Username: "me@example.com", Password: "pw"},
	}, {
		ID:   "relay",
		Type: TypeSMTP,
		SMTP: &SMTPPublisherConfig{Host: "relay.local", Port: 2525, Security: "none", From: "bot@relay.local"},
	}})
	assert.Equal(t, nil, err)

	pubs, err := BuildAll(context.Background(), DefaultRegistry(), reg.Enabled(), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(pubs))
	assert.Equal(t, TypeSMTP, pubs[0].Type())
	assert.Equal(t, "relay", pubs[1].ID())

	_, err = newSMTPPublisher(context.Background(), PublisherConfig{ID: "x", Type: TypeSMTP}, nil)
	assert.NotEqual(t, nil, err)
}
