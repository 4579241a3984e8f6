package credits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		hours, minutes int
		want           string
	}{
		{0, 0, "0h 0m"},
		{2, 0, "2h"},
		{0, 45, "45m"},
		{3, 15, "3h 15m"},
		{-1, 30, "30m"},
		{2, -5, "2h"},
		{-3, -3, "0h 0m"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Format(tc.hours, tc.minutes), "Format(%d, %d)", tc.hours, tc.minutes)
	}
}

func TestTierBoundaries(t *testing.T) {
	cases := []struct {
		hours, minutes int
		want           string
	}{
		{2, 0, TierGood},
		{2, 1, TierExcellent},
		{1, 0, TierLow},
		{1, 1, TierGood},
		{0, 60, TierLow},
		{0, 61, TierGood},
		{0, 0, TierLow},
		{5, 0, TierExcellent},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Tier(tc.hours, tc.minutes), "Tier(%d, %d)", tc.hours, tc.minutes)
	}
}

func TestCreditsMethods(t *testing.T) {
	c := Credits{Hours: 1, Minutes: 30}
	assert.Equal(t, "1h 30m", c.Format())
	assert.Equal(t, TierGood, c.Tier())
	assert.Equal(t, 90, TotalMinutes(c.Hours, c.Minutes))
}
