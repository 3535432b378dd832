package payment_gateway

import (
	"farmstay-service/internal/pkg/constvars"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	defaultRequestFields = []string{
		constvars.SignatureFieldCustomerEmail,
		constvars.SignatureFieldCustomerName,
		constvars.SignatureFieldCustomerMobile,
		constvars.SignatureFieldProjectCode,
		constvars.SignatureFieldReference,
	}
	defaultCallbackFields = []string{
		constvars.SignatureFieldReference,
		constvars.SignatureFieldGatewayPaymentID,
		constvars.SignatureFieldStatus,
	}
)

func bookingFields() map[string]string {
	return map[string]string{
		constvars.SignatureFieldCustomerEmail:  "guest@example.com",
		constvars.SignatureFieldCustomerName:   "Guest",
		constvars.SignatureFieldCustomerMobile: "+97450001234",
		constvars.SignatureFieldProjectCode:    "PRJ-1",
		constvars.SignatureFieldReference:      "BOOK-001",
		constvars.SignatureFieldAmount:         "500.00",
	}
}

func callbackFields() map[string]string {
	return map[string]string{
		constvars.SignatureFieldReference:        "BOOK-001",
		constvars.SignatureFieldGatewayPaymentID: "NQ-778",
		constvars.SignatureFieldStatus:           "success",
	}
}

func TestCanonicalString(t *testing.T) {
	canonical, err := CanonicalString(bookingFields(), defaultRequestFields)
	require.NoError(t, err)
	assert.Equal(t, "guest@example.comGuest+97450001234PRJ-1BOOK-001", canonical)

	_, err = CanonicalString(map[string]string{}, defaultRequestFields)
	assert.Error(t, err)
}

func TestSigner_SignPaymentRequest_KnownVectors(t *testing.T) {
	t.Run("hex default order", func(t *testing.T) {
		signer, err := NewSigner("S3CR3T", defaultRequestFields, defaultCallbackFields, constvars.SignatureEncodingHex)
		require.NoError(t, err)

		signature, err := signer.SignPaymentRequest(bookingFields())
		require.NoError(t, err)
		assert.Equal(t, "23f9ceaacdda27a921d6b26aae036cb40b26033c1bae45c17d99328070b626ab", signature)

		again, err := signer.SignPaymentRequest(bookingFields())
		require.NoError(t, err)
		assert.Equal(t, signature, again)
	})

	t.Run("base64 default order", func(t *testing.T) {
		signer, err := NewSigner("S3CR3T", defaultRequestFields, defaultCallbackFields, constvars.SignatureEncodingBase64)
		require.NoError(t, err)

		signature, err := signer.SignPaymentRequest(bookingFields())
		require.NoError(t, err)
		assert.Equal(t, "I/nOqs3aJ6kh1rJqrgNstAsmAzwbrkXBfZkygHC2Jqs=", signature)
	})

	t.Run("amount appended", func(t *testing.T) {
		fields := append(append([]string(nil), defaultRequestFields...), constvars.SignatureFieldAmount)
		signer, err := NewSigner("S3CR3T", fields, defaultCallbackFields, constvars.SignatureEncodingHex)
		require.NoError(t, err)

		signature, err := signer.SignPaymentRequest(bookingFields())
		require.NoError(t, err)
		assert.Equal(t, "d346ef08ed466f26d579a176bdeffd819d7f6f55cb3025dd3d87cdcae2898e7d", signature)
	})
}

func TestSigner_VerifyCallback(t *testing.T) {
	signer, err := NewSigner("S3CR3T", defaultRequestFields, defaultCallbackFields, constvars.SignatureEncodingHex)
	require.NoError(t, err)

	const valid = "504ba1115035d5b0eedef753edca6b9ebe91394502cd1c226dacaea5bb3d1e05"

	t.Run("valid signature", func(t *testing.T) {
		ok, err := signer.VerifyCallback(callbackFields(), valid)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("uppercase hex accepted", func(t *testing.T) {
		ok, err := signer.VerifyCallback(callbackFields(), "504BA1115035D5B0EEDEF753EDCA6B9EBE91394502CD1C226DACAEA5BB3D1E05")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("any single field mutation invalidates", func(t *testing.T) {
		for name := range callbackFields() {
			fields := callbackFields()
			fields[name] = fields[name] + "x"

			ok, err := signer.VerifyCallback(fields, valid)
			require.NoError(t, err)
			assert.False(t, ok, "mutating %s must invalidate the signature", name)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewSigner("other", defaultRequestFields, defaultCallbackFields, constvars.SignatureEncodingHex)
		require.NoError(t, err)

		ok, err := other.VerifyCallback(callbackFields(), valid)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("undecodable signature", func(t *testing.T) {
		ok, err := signer.VerifyCallback(callbackFields(), "zz-not-hex")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("sign and verify are symmetric", func(t *testing.T) {
		signature, err := signer.SignCallback(callbackFields())
		require.NoError(t, err)
		assert.Equal(t, valid, signature)
	})
}

func TestNewSigner_Validation(t *testing.T) {
	_, err := NewSigner("", defaultRequestFields, defaultCallbackFields, "hex")
	assert.Error(t, err)

	_, err = NewSigner("s", []string{"customer_email", "favourite_colour"}, defaultCallbackFields, "hex")
	assert.Error(t, err)

	_, err = NewSigner("s", defaultRequestFields, []string{"customer_email"}, "hex")
	assert.Error(t, err)

	_, err = NewSigner("s", defaultRequestFields, defaultCallbackFields, "md5")
	assert.Error(t, err)

	signer, err := NewSigner("s", defaultRequestFields, defaultCallbackFields, "")
	require.NoError(t, err)
	assert.Equal(t, constvars.SignatureEncodingHex, signer.encoding)
}
