package sms

import (
	"context"
	"errors"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/exceptions"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePublisher struct {
	queue   string
	message amqp091.Publishing
	err     error
}

func (f *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	f.queue = key
	f.message = msg
	return f.err
}

func TestSMSService_SendSMS(t *testing.T) {
	ctx := context.WithValue(context.Background(), constvars.CONTEXT_REQUEST_ID_KEY, "req-1")

	t.Run("publishes persistent JSON message", func(t *testing.T) {
		pub := &fakePublisher{}
		svc := &smsService{Channel: pub, Queue: "sms", Log: zap.NewNop()}

		err := svc.SendSMS(ctx, &requests.SMSMessage{To: "+97450001234", Type: requests.SMSTypeOTP, Message: "code 123456"})

		require.NoError(t, err)
		assert.Equal(t, "sms", pub.queue)
		assert.Equal(t, amqp091.Persistent, pub.message.DeliveryMode)
		assert.Equal(t, constvars.MIMEApplicationJSON, pub.message.ContentType)

		var sent requests.SMSMessage
		require.NoError(t, json.Unmarshal(pub.message.Body, &sent))
		assert.Equal(t, "+97450001234", sent.To)
		assert.Equal(t, requests.SMSTypeOTP, sent.Type)
	})

	t.Run("publish failure", func(t *testing.T) {
		pub := &fakePublisher{err: errors.New("channel closed")}
		svc := &smsService{Channel: pub, Queue: "sms", Log: zap.NewNop()}

		err := svc.SendSMS(ctx, &requests.SMSMessage{To: "+97450001234"})

		assert.Error(t, err)
		assert.Equal(t, constvars.StatusInternalServerError, exceptions.StatusCodeOf(err))
	})
}
