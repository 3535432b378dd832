package contracts

import (
	"context"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/dto/responses"
)

type AuthUsecase interface {
	RequestOTP(ctx context.Context, request *requests.RequestOTP) (*responses.RequestOTP, error)
	VerifyOTP(ctx context.Context, request *requests.VerifyOTP) (*responses.VerifyOTP, error)
	Logout(ctx context.Context, sessionID string) error
	ResolveSession(ctx context.Context, token string) (*models.Session, error)
}
