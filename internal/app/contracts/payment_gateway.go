package contracts

import (
	"context"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/dto/responses"
)

type PaymentGatewayService interface {
	GenerateLinks(ctx context.Context, request *requests.NoqoodyGenerateLinks) (*responses.NoqoodyGenerateLinks, error)
	GetTransactionStatus(ctx context.Context, reference string) (*responses.NoqoodyTransactionStatus, error)
}

// PaymentSigner computes and checks HMAC signatures over named fields.
type PaymentSigner interface {
	SignPaymentRequest(fields map[string]string) (string, error)
	VerifyCallback(fields map[string]string, signature string) (bool, error)
}
