package wallet

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"hotspot/pkg/credits"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCardPerKind(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	c := credits.Credits{Hours: 3, Minutes: 15}
	tags := map[Kind]string{
		KindGoogle:  "google_pay",
		KindSamsung: "samsung_pay",
		KindGeneric: "generic_pass",
	}
	for kind, tag := range tags {
		card, err := BuildCard(kind, "user-abcdef123456", "ana@example.com", c, now)
		require.NoError(t, err)
		assert.Equal(t, tag, card.Type)
		assert.Equal(t, Issuer, card.Issuer)
		assert.Equal(t, CardName, card.CardName)
		assert.Equal(t, "user-abcdef123456", card.AccountID)
		assert.Equal(t, "ana@example.com", card.AccountEmail)
		assert.Equal(t, "3h 15m", card.Balance)
		assert.Equal(t, credits.TierExcellent, card.Status)
		assert.Equal(t, "ef123456", card.CardNumber)
		assert.Equal(t, "2027-03-01", card.ExpiryDate)
		assert.Equal(t, "2026-03-01T12:30:00Z", card.Timestamp)
		assert.Contains(t, card.QRCode, "data:image/png;base64,")
		assert.NotEmpty(t, kind.Instructions())
	}
}

func TestBuildCardUnknownKind(t *testing.T) {
	_, err := BuildCard(Kind("apple"), "u1", "a@b.c", credits.Credits{}, time.Now())
	assert.Error(t, err)
}

func TestCardNumberShortID(t *testing.T) {
	assert.Equal(t, "abc", CardNumber("abc"))
	assert.Equal(t, "12345678", CardNumber("12345678"))
	assert.Equal(t, "23456789", CardNumber("123456789"))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("samsung-pay")
	require.NoError(t, err)
	assert.Equal(t, KindSamsung, k)
	k, err = ParseKind("generic")
	require.NoError(t, err)
	assert.Equal(t, KindGeneric, k)
	_, err = ParseKind("apple-pass")
	assert.Error(t, err)
}

func TestQRPayloadFields(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw := QRPayload("u1", "a@b.c", credits.Credits{Hours: 1, Minutes: 2}, now)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, "u1", got["uid"])
	assert.Equal(t, "a@b.c", got["email"])
	assert.Equal(t, map[string]interface{}{"hours": float64(1), "minutes": float64(2)}, got["credits"])
	assert.Equal(t, "2026-01-02T03:04:05Z", got["timestamp"])
}

func TestInstructionsAreCopies(t *testing.T) {
	steps := KindGoogle.Instructions()
	steps[0] = "changed"
	assert.NotEqual(t, "changed", KindGoogle.Instructions()[0])
}

func TestQRDataURL(t *testing.T) {
	url, err := QRDataURL(`{"uid":"u1"}`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}
