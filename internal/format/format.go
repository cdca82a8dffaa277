// Package format renders prices, times and price changes the way the UI
// shows them.
package format

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Direction of a price movement
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionSame Direction = "same"
)

// Change is a price movement between two observations
type Change struct {
	Percentage float64 // always non-negative
	Direction  Direction
}

func printer() *message.Printer {
	return message.NewPrinter(language.Korean)
}

// Number groups digits the Korean way: 1234000 -> "1,234,000"
func Number(n int64) string {
	return printer().Sprintf("%d", n)
}

// Currency formats won amounts: 1234000 -> "₩1,234,000"
func Currency(n int64) string {
	return "₩" + Number(n)
}

// CompactWon formats chart axis ticks in thousands: 12400 -> "₩12k"
func CompactWon(n float64) string {
	return fmt.Sprintf("₩%.0fk", math.Round(n/1000))
}

// Percent formats a rate with one decimal: 7.26 -> "7.3%"
func Percent(x float64) string {
	return fmt.Sprintf("%.1f%%", x)
}

// RelativeTime describes t relative to now in growing units: minutes,
// hours, "어제", days, then the absolute date in loc. Timestamps in the
// future read as "0분 전".
func RelativeTime(now, t time.Time, loc *time.Location) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}

	minutes := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case minutes < 60:
		return fmt.Sprintf("%d분 전", minutes)
	case hours < 24:
		return fmt.Sprintf("%d시간 전", hours)
	case days == 1:
		return "어제"
	case days < 7:
		return fmt.Sprintf("%d일 전", days)
	default:
		return Date(t, loc)
	}
}

// Date formats t as the Korean locale date, e.g. "2026. 10. 6."
func Date(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006. 1. 2.")
}

// ShortDate formats chart axis dates, e.g. "10월 6일"
func ShortDate(t time.Time) string {
	return fmt.Sprintf("%d월 %d일", int(t.Month()), t.Day())
}

// PriceChange compares current with previous. Equal prices, or no previous
// price to compare with, are DirectionSame with 0%.
func PriceChange(current, previous int64) Change {
	if current == previous || previous == 0 {
		return Change{Direction: DirectionSame}
	}

	pct := math.Abs(float64(current-previous) / float64(previous) * 100)
	if current > previous {
		return Change{Percentage: pct, Direction: DirectionUp}
	}
	return Change{Percentage: pct, Direction: DirectionDown}
}
