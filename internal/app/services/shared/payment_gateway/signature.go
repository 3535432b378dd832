package payment_gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/exceptions"
	"fmt"
	"strings"
)

var requestSignatureFields = map[string]bool{
	constvars.SignatureFieldCustomerEmail:  true,
	constvars.SignatureFieldCustomerName:   true,
	constvars.SignatureFieldCustomerMobile: true,
	constvars.SignatureFieldDescription:    true,
	constvars.SignatureFieldProjectCode:    true,
	constvars.SignatureFieldReference:      true,
	constvars.SignatureFieldAmount:         true,
}

var callbackSignatureFields = map[string]bool{
	constvars.SignatureFieldReference:        true,
	constvars.SignatureFieldGatewayPaymentID: true,
	constvars.SignatureFieldStatus:           true,
	constvars.SignatureFieldAmount:           true,
}

// Signer computes HMAC-SHA256 over the configured field order. The inputs are
// concatenated without separators, in exactly the order given.
type Signer struct {
	secret         []byte
	requestFields  []string
	callbackFields []string
	encoding       string
}

func NewSigner(secret string, requestFields, callbackFields []string, encoding string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("signature secret is empty")
	}
	if len(requestFields) == 0 || len(callbackFields) == 0 {
		return nil, errors.New("signature field order is empty")
	}
	for _, field := range requestFields {
		if !requestSignatureFields[field] {
			return nil, fmt.Errorf("unsupported payment request signature field %q", field)
		}
	}
	for _, field := range callbackFields {
		if !callbackSignatureFields[field] {
			return nil, fmt.Errorf("unsupported callback signature field %q", field)
		}
	}

	encoding = strings.ToLower(strings.TrimSpace(encoding))
	if encoding == "" {
		encoding = constvars.SignatureEncodingHex
	}
	if encoding != constvars.SignatureEncodingHex && encoding != constvars.SignatureEncodingBase64 {
		return nil, fmt.Errorf("unsupported signature encoding %q", encoding)
	}

	return &Signer{
		secret:         []byte(secret),
		requestFields:  append([]string(nil), requestFields...),
		callbackFields: append([]string(nil), callbackFields...),
		encoding:       encoding,
	}, nil
}

// CanonicalString joins the values of order. Every listed field must be present in fields.
func CanonicalString(fields map[string]string, order []string) (string, error) {
	var builder strings.Builder
	for _, name := range order {
		value, ok := fields[name]
		if !ok {
			return "", exceptions.ErrSignatureUnsupportedField(errors.New("field missing from signature input"), name)
		}
		builder.WriteString(value)
	}
	return builder.String(), nil
}

func (s *Signer) mac(canonical string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(canonical))
	return h.Sum(nil)
}

func (s *Signer) encode(sum []byte) string {
	if s.encoding == constvars.SignatureEncodingBase64 {
		return base64.StdEncoding.EncodeToString(sum)
	}
	return hex.EncodeToString(sum)
}

func (s *Signer) decode(signature string) ([]byte, error) {
	signature = strings.TrimSpace(signature)
	if s.encoding == constvars.SignatureEncodingBase64 {
		return base64.StdEncoding.DecodeString(signature)
	}
	return hex.DecodeString(strings.ToLower(signature))
}

func (s *Signer) SignPaymentRequest(fields map[string]string) (string, error) {
	canonical, err := CanonicalString(fields, s.requestFields)
	if err != nil {
		return "", err
	}
	return s.encode(s.mac(canonical)), nil
}

// VerifyCallback recomputes the callback signature and compares it in constant time.
// A signature that cannot be decoded is reported as a mismatch.
func (s *Signer) VerifyCallback(fields map[string]string, signature string) (bool, error) {
	canonical, err := CanonicalString(fields, s.callbackFields)
	if err != nil {
		return false, err
	}

	provided, err := s.decode(signature)
	if err != nil {
		return false, nil
	}
	return hmac.Equal(s.mac(canonical), provided), nil
}

// SignCallback produces the signature the gateway is expected to send; used by tooling and tests.
func (s *Signer) SignCallback(fields map[string]string) (string, error) {
	canonical, err := CanonicalString(fields, s.callbackFields)
	if err != nil {
		return "", err
	}
	return s.encode(s.mac(canonical)), nil
}
