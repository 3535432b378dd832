package utils

import (
	"farmstay-service/internal/pkg/constvars"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	otp, err := GenerateOTP(constvars.SMS_OTP_LENGTH)
	require.NoError(t, err)
	assert.Len(t, otp, constvars.SMS_OTP_LENGTH)
	assert.Regexp(t, regexp.MustCompile(constvars.RegexNumeric), otp)
}

func TestGenerateRequestID(t *testing.T) {
	first := GenerateRequestID()
	second := GenerateRequestID()

	assert.True(t, strings.HasPrefix(first, constvars.REQUEST_ID_PREFIX))
	assert.NotEqual(t, first, second)
}

func TestCheckOTPHash(t *testing.T) {
	hash, err := HashOTP("123456")
	require.NoError(t, err)

	assert.True(t, CheckOTPHash("123456", hash))
	assert.False(t, CheckOTPHash("654321", hash))
}
