package publishers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/go-playground/assert/v2"
)

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-2")}, nil
}

var queueMsg = Message{
	Subject:       "Daily News Digest - March 09, 2026",
	Text:          "text",
	HTML:          "<p>html</p>",
	Date:          time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC),
	HeadlineCount: 12,
}

func TestSNSSenderPublishesDigest(t *testing.T) {
	client := &fakeSNS{}
	sender := &awsSNSSender{topicARN: "arn:aws:sns:us-east-1:1:digest", client: client, log: ensureLogger(nil)}

	err := sender.Send(context.Background(), queueMsg)
	assert.Equal(t, nil, err)
	assert.Equal(t, "arn:aws:sns:us-east-1:1:digest", aws.ToString(client.input.TopicArn))
	assert.Equal(t, queueMsg.Subject, aws.ToString(client.input.Subject))
	assert.Equal(t, "12", aws.ToString(client.input.MessageAttributes["headline_count"].StringValue))
	assert.Equal(t, "2026-03-09", aws.ToString(client.input.MessageAttributes["digest_date"].StringValue))

	var decoded Message
	assert.Equal(t, nil, json.Unmarshal([]byte(aws.ToString(client.input.Message)), &decoded))
	assert.Equal(t, "<p>html</p>", decoded.HTML)
}

func TestSNSSubjectIsCapped(t *testing.T) {
	long := strings.Repeat("s", 150)
	assert.Equal(t, 100, len(snsSubject(long)))
	assert.Equal(t, "short", snsSubject("short"))
}

func TestSQSSenderEnqueuesDigest(t *testing.T) {
	client := &fakeSQS{}
	sender := &awsSQSSender{queueURL: "https://sqs.local/q", client: client, log: ensureLogger(nil)}

	err := sender.Send(context.Background(), queueMsg)
	assert.Equal(t, nil, err)
	assert.Equal(t, "https://sqs.local/q", aws.ToString(client.input.QueueUrl))
	assert.Equal(t, true, strings.Contains(aws.ToString(client.input.MessageBody), `"headline_count":12`))

	client.err = errors.New("throttled")
	err = sender.Send(context.Background(), queueMsg)
	assert.Equal(t, true, errors.Is(err, client.err))
}

type fakeSender struct {
	got []Message
	err error
}

func (f *fakeSender) Send(_ context.Context, msg Message) error {
	f.got = append(f.got, msg)
	return f.err
}

func TestQueuePublisherWrapsProviderErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("nope")}
	pub := &queuePublisher{id: "q", typ: TypeQueue, provider: QueueProviderGCP, sender: sender, log: ensureLogger(nil)}

	err := pub.Publish(context.Background(), queueMsg)
	assert.Equal(t, true, strings.Contains(err.Error(), "queue provider gcp send failed"))
	assert.Equal(t, 1, len(sender.got))
}

func TestEncodeMessageWithoutDate(t *testing.T) {
	_, attrs, err := encodeMessage(Message{HeadlineCount: 0})
	assert.Equal(t, nil, err)
	assert.Equal(t, map[string]string{"headline_count": "0"}, attrs)
}

func TestWriterPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewWriterPublisher("stdout", &buf)

	assert.Equal(t, nil, pub.Publish(context.Background(), Message{Subject: "Subj", Text: "Body"}))
	assert.Equal(t, "Subject: Subj\n\nBody\n", buf.String())
	assert.Equal(t, TypeWriter, pub.Type())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NotEqual(t, nil, pub.Publish(ctx, Message{}))
}
