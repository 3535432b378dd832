package contracts

import (
	"context"
	"farmstay-service/internal/pkg/dto/requests"
)

type SMSService interface {
	SendSMS(ctx context.Context, request *requests.SMSMessage) error
}
