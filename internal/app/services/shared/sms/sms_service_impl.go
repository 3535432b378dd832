package sms

import (
	"context"
	"farmstay-service/internal/app/contracts"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/exceptions"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// publisher is the subset of *amqp091.Channel used here.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type smsService struct {
	Channel publisher
	Queue   string
	Log     *zap.Logger
}

var (
	smsServiceInstance contracts.SMSService
	onceSMSService     sync.Once
	smsServiceError    error
)

func NewSMSService(rabbitMQConnection *amqp091.Connection, logger *zap.Logger, queue string) (contracts.SMSService, error) {
	onceSMSService.Do(func() {
		channel, err := rabbitMQConnection.Channel()
		if err != nil {
			smsServiceError = err
			return
		}
		smsServiceInstance = &smsService{
			Channel: channel,
			Queue:   queue,
			Log:     logger,
		}
	})
	return smsServiceInstance, smsServiceError
}

func (s *smsService) SendSMS(ctx context.Context, request *requests.SMSMessage) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("smsService.SendSMS called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("sms_type", request.Type),
	)

	body, err := json.Marshal(request)
	if err != nil {
		s.Log.Error("smsService.SendSMS error marshaling JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrCannotMarshalJSON(err)
	}

	message := amqp091.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		MessageId:    requestID,
		Headers: amqp091.Table{
			"message_type":     "JSON",
			"requeue_strategy": "DROP",
		},
	}

	err = s.Channel.PublishWithContext(ctx, "", s.Queue, false, false, message)
	if err != nil {
		s.Log.Error("smsService.SendSMS error publishing message",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingQueueNameKey, s.Queue),
			zap.Error(err),
		)
		return exceptions.ErrRabbitMQPublishMessage(err, s.Queue)
	}

	s.Log.Info("smsService.SendSMS succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingQueueNameKey, s.Queue),
	)
	return nil
}
