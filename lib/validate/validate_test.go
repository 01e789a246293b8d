package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAYREKAS/CryptoSphereAPI/lib/errs"
)

func TestUsername(t *testing.T) {
	got, err := Username("  Satoshi.N  ")
	require.NoError(t, err)
	assert.Equal(t, "satoshi.n", got)

	cases := []string{
		"ab",            // too short
		"admin",         // reserved
		".starts_bad",   // leading dot
		"ends_bad_",     // trailing underscore
		"has space",     // illegal char
		"cyrillic_імя!", // illegal char
	}
	for _, raw := range cases {
		_, err := Username(raw)
		assert.ErrorIs(t, err, errs.ErrValidation, "input %q", raw)
	}
}

func TestEmail(t *testing.T) {
	got, err := Email(" User@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got)

	for _, raw := range []string{"not-an-email", "a@b", "two@@example.com"} {
		_, err := Email(raw)
		assert.ErrorIs(t, err, errs.ErrValidation, "input %q", raw)
	}
}

func TestPassword(t *testing.T) {
	assert.NoError(t, Password("Str0ng!pass"))

	for _, raw := range []string{
		"Sh0rt!pw",       // 8 chars, too short
		"alllower1!pass", // no uppercase
		"ALLUPPER1!PASS", // no lowercase
		"NoDigits!here",  // no digit
		"NoSpecial1here", // no special
	} {
		assert.ErrorIs(t, Password(raw), errs.ErrValidation, "input %q", raw)
	}
}

func TestCoinName(t *testing.T) {
	got, err := CoinName("  bitcoin cash ")
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin Cash", got)

	_, err = CoinName("   ")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestCoinSymbol(t *testing.T) {
	got, err := CoinSymbol(" btc ")
	require.NoError(t, err)
	assert.Equal(t, "BTC", got)

	_, err = CoinSymbol("B TC")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = CoinSymbol("")
	assert.ErrorIs(t, err, errs.ErrValidation)
}
