package responses

import "github.com/shopspring/decimal"

type NoqoodyToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type NoqoodyGenerateLinks struct {
	Success       bool   `json:"success"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	PaymentURL    string `json:"PaymentUrl"`
	PaymentLinkID string `json:"PaymentLinkId"`
}

type NoqoodyTransactionStatus struct {
	Success           bool             `json:"success"`
	Code              string           `json:"code"`
	Message           string           `json:"message"`
	Reference         string           `json:"Reference"`
	TransactionID     string           `json:"TransactionID"`
	TransactionStatus string           `json:"TransactionStatus"`
	Amount            *decimal.Decimal `json:"Amount,omitempty"`
}
