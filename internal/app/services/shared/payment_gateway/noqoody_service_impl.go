package payment_gateway

import (
	"bytes"
	"context"
	"errors"
	"farmstay-service/internal/app/config"
	"farmstay-service/internal/app/contracts"
	"farmstay-service/internal/app/services/shared/metrics"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/dto/responses"
	"farmstay-service/internal/pkg/exceptions"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	operationToken         = "token"
	operationGenerateLinks = "generate_links"
	operationStatus        = "transaction_status"
	maxGatewayResponseSize = 1 << 20
)

var (
	errGatewayServer = errors.New("payment gateway server error")
	// errCallerGone marks calls abandoned by the caller; the gateway did not fail them.
	errCallerGone = errors.New("caller abandoned gateway call")
)

// gatewayResponse is what passes through the circuit breaker. Only transport
// errors and 5xx answers count as breaker failures.
type gatewayResponse struct {
	statusCode int
	body       []byte
}

type noqoodyService struct {
	BaseUrl     string
	Username    string
	Password    string
	TokenMargin time.Duration
	HTTPClient  *http.Client
	Breaker     *gobreaker.CircuitBreaker[*gatewayResponse]
	RedisRepo   contracts.RedisRepository
	Metrics     *metrics.Metrics
	Log         *zap.Logger
}

func NewNoqoodyService(internalConfig *config.InternalConfig, redisRepo contracts.RedisRepository, appMetrics *metrics.Metrics, logger *zap.Logger) contracts.PaymentGatewayService {
	cfg := internalConfig.Noqoody
	maxFailures := uint32(cfg.BreakerMaxFailures)
	if maxFailures == 0 {
		maxFailures = 5
	}

	settings := gobreaker.Settings{
		Name:        "noqoody",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     time.Duration(cfg.BreakerOpenTimeoutInSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("noqoodyService circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &noqoodyService{
		BaseUrl:     strings.TrimRight(cfg.BaseUrl, "/"),
		Username:    cfg.Username,
		Password:    cfg.Password,
		TokenMargin: time.Duration(cfg.TokenExpiryMarginInSeconds) * time.Second,
		HTTPClient: &http.Client{
			Timeout: time.Duration(internalConfig.App.PaymentGatewayRequestTimeoutInSeconds) * time.Second,
		},
		Breaker:   gobreaker.NewCircuitBreaker[*gatewayResponse](settings),
		RedisRepo: redisRepo,
		Metrics:   appMetrics,
		Log:       logger,
	}
}

func (s *noqoodyService) GenerateLinks(ctx context.Context, request *requests.NoqoodyGenerateLinks) (*responses.NoqoodyGenerateLinks, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("noqoodyService.GenerateLinks called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentReferenceKey, request.Reference),
	)

	body, err := json.Marshal(request)
	if err != nil {
		s.Log.Error("noqoodyService.GenerateLinks error marshaling JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	resp, err := s.authorizedCall(ctx, operationGenerateLinks, constvars.MethodPost, s.BaseUrl+constvars.NoqoodyGenerateLinksPath, body)
	if err != nil {
		s.Log.Error("noqoodyService.GenerateLinks error calling gateway",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentReferenceKey, request.Reference),
			zap.Error(err),
		)
		return nil, err
	}

	result := new(responses.NoqoodyGenerateLinks)
	if err := json.Unmarshal(resp.body, result); err != nil {
		s.Log.Error("noqoodyService.GenerateLinks error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrGatewayInvalidResponse(err)
	}

	if !result.Success {
		err := fmt.Errorf("gateway refused link generation: code=%s message=%s", result.Code, result.Message)
		s.Log.Warn("noqoodyService.GenerateLinks rejected by gateway",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentReferenceKey, request.Reference),
			zap.Error(err),
		)
		return nil, exceptions.ErrGatewayRejected(err)
	}

	if _, err := url.ParseRequestURI(result.PaymentURL); err != nil {
		s.Log.Error("noqoodyService.GenerateLinks response without a usable payment url",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrGatewayInvalidResponse(err)
	}

	s.Log.Info("noqoodyService.GenerateLinks succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentReferenceKey, request.Reference),
		zap.String(constvars.LoggingGatewayPaymentIDKey, result.PaymentLinkID),
	)
	return result, nil
}

func (s *noqoodyService) GetTransactionStatus(ctx context.Context, reference string) (*responses.NoqoodyTransactionStatus, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("noqoodyService.GetTransactionStatus called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentReferenceKey, reference),
	)

	endpoint := s.BaseUrl + constvars.NoqoodyValidatePaymentURL + "?ReferenceNo=" + url.QueryEscape(reference)
	resp, err := s.authorizedCall(ctx, operationStatus, constvars.MethodGet, endpoint, nil)
	if err != nil {
		s.Log.Error("noqoodyService.GetTransactionStatus error calling gateway",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentReferenceKey, reference),
			zap.Error(err),
		)
		return nil, err
	}

	result := new(responses.NoqoodyTransactionStatus)
	if err := json.Unmarshal(resp.body, result); err != nil {
		s.Log.Error("noqoodyService.GetTransactionStatus error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrGatewayInvalidResponse(err)
	}

	if !result.Success {
		err := fmt.Errorf("gateway refused status lookup: code=%s message=%s", result.Code, result.Message)
		return nil, exceptions.ErrGatewayRejected(err)
	}

	s.Log.Info("noqoodyService.GetTransactionStatus succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentReferenceKey, reference),
		zap.String(constvars.LoggingGatewayStatusKey, result.TransactionStatus),
	)
	return result, nil
}

// authorizedCall sends a bearer-authenticated request. A 401 drops the cached
// token and repeats the call once with a fresh one.
func (s *noqoodyService) authorizedCall(ctx context.Context, operation, method, endpoint string, body []byte) (*gatewayResponse, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := s.accessToken(ctx, attempt > 0)
		if err != nil {
			return nil, err
		}

		resp, err := s.execute(ctx, operation, method, endpoint, body, func(req *http.Request) {
			req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
			req.Header.Set(constvars.HeaderAuthorization, constvars.AuthorizationBearerPrefix+token)
		})
		if err != nil {
			return nil, err
		}

		if resp.statusCode == constvars.StatusUnauthorized && attempt == 0 {
			continue
		}
		if resp.statusCode >= 400 {
			return nil, exceptions.ErrGatewayRejected(fmt.Errorf("%s returned status %d", operation, resp.statusCode))
		}
		return resp, nil
	}
	return nil, exceptions.ErrGatewayRejected(fmt.Errorf("%s unauthorized after token refresh", operation))
}

func (s *noqoodyService) accessToken(ctx context.Context, forceRefresh bool) (string, error) {
	if !forceRefresh {
		cached, err := s.RedisRepo.Get(ctx, constvars.RedisKeyNoqoodyToken)
		if err == nil && cached != "" {
			var token string
			if json.Unmarshal([]byte(cached), &token) == nil && token != "" {
				return token, nil
			}
		}
	}

	form := url.Values{}
	form.Set("grant_type", constvars.NoqoodyGrantTypePassword)
	form.Set("username", s.Username)
	form.Set("password", s.Password)

	resp, err := s.execute(ctx, operationToken, constvars.MethodPost, s.BaseUrl+constvars.NoqoodyTokenPath, []byte(form.Encode()), func(req *http.Request) {
		req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationForm)
	})
	if err != nil {
		return "", err
	}
	if resp.statusCode >= 400 {
		return "", exceptions.ErrGatewayRejected(fmt.Errorf("token endpoint returned status %d", resp.statusCode))
	}

	token := new(responses.NoqoodyToken)
	if err := json.Unmarshal(resp.body, token); err != nil {
		return "", exceptions.ErrGatewayInvalidResponse(err)
	}
	if token.AccessToken == "" {
		return "", exceptions.ErrGatewayInvalidResponse(errors.New("token response without access_token"))
	}

	ttl := time.Duration(token.ExpiresIn)*time.Second - s.TokenMargin
	if ttl > 0 {
		if err := s.RedisRepo.Set(ctx, constvars.RedisKeyNoqoodyToken, token.AccessToken, ttl); err != nil {
			s.Log.Warn("noqoodyService.accessToken failed to cache token", zap.Error(err))
		}
	}
	return token.AccessToken, nil
}

func breakerSuccess(err error) bool {
	return err == nil || errors.Is(err, errCallerGone)
}

// abandonedBy tags err when the caller's context ended before the gateway answered.
// Client timeouts are left untagged and still count against the gateway.
func abandonedBy(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", errCallerGone, err)
	}
	return err
}

func (s *noqoodyService) execute(ctx context.Context, operation, method, endpoint string, body []byte, decorate func(*http.Request)) (*gatewayResponse, error) {
	start := time.Now()
	resp, err := s.Breaker.Execute(func() (*gatewayResponse, error) {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		decorate(req)

		httpResp, err := s.HTTPClient.Do(req)
		if err != nil {
			return nil, abandonedBy(ctx, err)
		}
		defer httpResp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxGatewayResponseSize))
		if err != nil {
			return nil, abandonedBy(ctx, err)
		}
		if httpResp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: status %d", errGatewayServer, httpResp.StatusCode)
		}
		return &gatewayResponse{statusCode: httpResp.StatusCode, body: respBody}, nil
	})

	status := "ok"
	if err != nil {
		status = "error"
	} else if resp.statusCode >= 400 {
		status = "rejected"
	}
	s.Metrics.RecordGatewayRequest(operation, status, time.Since(start))

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			s.Log.Warn("noqoodyService circuit open, failing fast", zap.String(constvars.LoggingOperationKey, operation))
		}
		return nil, exceptions.ErrGatewayUnavailable(err)
	}
	return resp, nil
}
