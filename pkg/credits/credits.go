package credits

import "fmt"

// Status tiers for a remaining credit balance.
const (
	TierExcellent = "Excellent"
	TierGood      = "Good"
	TierLow       = "Low"
)

// Credits is a remaining-time balance.
type Credits struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// Format renders a balance as "3h 15m", "2h", "45m" or "0h 0m".
// Negative values are treated as zero.
func Format(hours, minutes int) string {
	h, m := clamp(hours), clamp(minutes)
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	}
	return "0h 0m"
}

// TotalMinutes returns hours*60+minutes after clamping.
func TotalMinutes(hours, minutes int) int {
	return clamp(hours)*60 + clamp(minutes)
}

// Tier maps a balance to Excellent (>120 min), Good (>60 min) or Low.
// Exactly 120 is Good and exactly 60 is Low.
func Tier(hours, minutes int) string {
	total := TotalMinutes(hours, minutes)
	switch {
	case total > 120:
		return TierExcellent
	case total > 60:
		return TierGood
	}
	return TierLow
}

func (c Credits) Format() string { return Format(c.Hours, c.Minutes) }

func (c Credits) Tier() string { return Tier(c.Hours, c.Minutes) }
