package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIndianPhone(t *testing.T) {
	cases := map[string]string{
		"9876543210":       "+919876543210",
		"98765 43210":      "+919876543210",
		"098765-43210":     "+919876543210",
		"+91 98765 43210":  "+919876543210",
		"919876543210":     "+919876543210",
		"+14155552671":     "+14155552671",
		"(987) 654-3210":   "+919876543210",
	}
	for in, want := range cases {
		got, err := NormalizeIndianPhone(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "12345", "1234567890", "+91 12345", "abc"} {
		_, err := NormalizeIndianPhone(bad)
		assert.ErrorIs(t, err, ErrInvalidPhone, bad)
	}
}

func TestValidateEmailSyntaxOnly(t *testing.T) {
	ctx := context.Background()
	assert.True(t, ValidateEmail(ctx, "owner@example.com", false))
	assert.False(t, ValidateEmail(ctx, "not-an-email", false))
	assert.False(t, ValidateEmail(ctx, "Owner <owner@example.com>", false))
}

func TestValidatePhoneNumberWithoutTwilio(t *testing.T) {
	ok, err := ValidatePhoneNumber(context.Background(), "+919876543210", nil, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ValidatePhoneNumber(context.Background(), "9876543210", nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
