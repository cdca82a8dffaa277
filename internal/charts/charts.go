// Package charts computes SVG geometry for the price trend chart and the
// product card sparkline. Templates draw the result; nothing here knows
// about HTML.
package charts

import (
	"fmt"
	"math"
	"strings"

	"github.com/codyseavey/pricewatch/web/internal/format"
	"github.com/codyseavey/pricewatch/web/internal/models"
)

const (
	yIntervals = 4
	maxXLabels = 7
)

// Point is one plotted observation
type Point struct {
	X, Y  float64
	Date  string
	Shop  string
	Price string
}

// Tick is a labelled horizontal grid line
type Tick struct {
	Y     float64
	Label string
}

// Label is an x axis caption
type Label struct {
	X     float64
	Label string
}

// Chart is a laid-out line chart. Empty charts have no points and the view
// shows an empty-state message instead.
type Chart struct {
	Width, Height float64
	Left, Right   float64
	Top, Bottom   float64

	Path    string
	Points  []Point
	YTicks  []Tick
	XLabels []Label
	Empty   bool
}

// ViewBox returns the SVG viewBox attribute value
func (c Chart) ViewBox() string {
	return fmt.Sprintf("0 0 %g %g", c.Width, c.Height)
}

type layout struct {
	width, height            float64
	left, right, top, bottom float64
	ticks                    bool
}

var (
	lineLayout      = layout{width: 640, height: 300, left: 56, right: 16, top: 16, bottom: 32, ticks: true}
	sparklineLayout = layout{width: 200, height: 64, left: 2, right: 2, top: 4, bottom: 4}
)

// Line lays out the price trend chart with grid ticks, date labels and
// point tooltips.
func Line(items []models.PriceHistoryItem) Chart {
	return build(items, lineLayout)
}

// Sparkline lays out the small card chart: the line only
func Sparkline(items []models.PriceHistoryItem) Chart {
	return build(items, sparklineLayout)
}

func build(items []models.PriceHistoryItem, l layout) Chart {
	c := Chart{
		Width:  l.width,
		Height: l.height,
		Left:   l.left,
		Right:  l.width - l.right,
		Top:    l.top,
		Bottom: l.height - l.bottom,
	}
	if len(items) == 0 {
		c.Empty = true
		return c
	}

	lo, hi := bounds(items)
	plotW := c.Right - c.Left
	plotH := c.Bottom - c.Top

	xAt := func(i int) float64 {
		if len(items) == 1 {
			return c.Left + plotW/2
		}
		return c.Left + plotW*float64(i)/float64(len(items)-1)
	}
	yAt := func(v float64) float64 {
		return c.Bottom - plotH*(v-lo)/(hi-lo)
	}

	var path strings.Builder
	c.Points = make([]Point, 0, len(items))
	for i, it := range items {
		x, y := xAt(i), yAt(float64(it.MinPrice))
		if i == 0 {
			fmt.Fprintf(&path, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&path, " L%.1f,%.1f", x, y)
		}

		shop := ""
		if it.Shop != nil {
			shop = *it.Shop
		}
		c.Points = append(c.Points, Point{
			X:     round1(x),
			Y:     round1(y),
			Date:  format.ShortDate(it.Date.Time),
			Shop:  shop,
			Price: format.Currency(it.MinPrice),
		})
	}
	c.Path = path.String()

	if !l.ticks {
		return c
	}

	for i := 0; i <= yIntervals; i++ {
		v := lo + (hi-lo)*float64(i)/yIntervals
		c.YTicks = append(c.YTicks, Tick{Y: round1(yAt(v)), Label: format.CompactWon(v)})
	}

	step := int(math.Ceil(float64(len(items)) / maxXLabels))
	for i := 0; i < len(items); i += step {
		c.XLabels = append(c.XLabels, Label{X: round1(xAt(i)), Label: c.Points[i].Date})
	}
	return c
}

// bounds returns the y domain, padded so a flat series sits mid-chart
func bounds(items []models.PriceHistoryItem) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, it := range items {
		v := float64(it.MinPrice)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Max(math.Abs(lo)*0.1, 1000)
	}
	lo = math.Max(lo-pad, 0)
	hi += pad
	return lo, hi
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
