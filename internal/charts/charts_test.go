package charts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/pricewatch/web/internal/models"
)

func series(prices ...int64) []models.PriceHistoryItem {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	shop := "G마켓"
	items := make([]models.PriceHistoryItem, len(prices))
	for i, p := range prices {
		items[i] = models.PriceHistoryItem{
			Date:     models.Timestamp{Time: start.AddDate(0, 0, i)},
			MinPrice: p,
			Shop:     &shop,
		}
	}
	return items
}

func TestLine_Empty(t *testing.T) {
	c := Line(nil)

	assert.True(t, c.Empty)
	assert.Empty(t, c.Path)
	assert.Empty(t, c.Points)
	assert.Equal(t, "0 0 640 300", c.ViewBox())
}

func TestLine_PlotsEveryPoint(t *testing.T) {
	c := Line(series(1500, 1200, 1300, 1000))

	require.False(t, c.Empty)
	require.Len(t, c.Points, 4)
	assert.True(t, strings.HasPrefix(c.Path, "M"))
	assert.Equal(t, 3, strings.Count(c.Path, " L"))

	assert.Equal(t, c.Left, c.Points[0].X)
	assert.Equal(t, c.Right, c.Points[3].X)
	// Lower price sits lower on screen, i.e. larger y.
	assert.Greater(t, c.Points[3].Y, c.Points[0].Y)
	for _, p := range c.Points {
		assert.GreaterOrEqual(t, p.Y, c.Top)
		assert.LessOrEqual(t, p.Y, c.Bottom)
	}

	assert.Equal(t, "10월 1일", c.Points[0].Date)
	assert.Equal(t, "G마켓", c.Points[0].Shop)
	assert.Equal(t, "₩1,500", c.Points[0].Price)
}

func TestLine_Ticks(t *testing.T) {
	c := Line(series(10000, 20000))

	require.Len(t, c.YTicks, 5)
	assert.Equal(t, c.Bottom, c.YTicks[0].Y)
	assert.Equal(t, c.Top, c.YTicks[4].Y)
	for _, tick := range c.YTicks {
		assert.Regexp(t, `^₩\d+k$`, tick.Label)
	}
}

func TestLine_XLabelsAreThinned(t *testing.T) {
	prices := make([]int64, 90)
	for i := range prices {
		prices[i] = int64(100000 + i*100)
	}

	c := Line(series(prices...))

	assert.Len(t, c.Points, 90)
	assert.LessOrEqual(t, len(c.XLabels), maxXLabels)
	assert.Equal(t, "10월 1일", c.XLabels[0].Label)
}

func TestLine_FlatSeriesAndSinglePoint(t *testing.T) {
	flat := Line(series(5000, 5000, 5000))
	for _, p := range flat.Points {
		assert.InDelta(t, (flat.Top+flat.Bottom)/2, p.Y, 0.1)
	}

	single := Line(series(5000))
	require.Len(t, single.Points, 1)
	assert.InDelta(t, (single.Left+single.Right)/2, single.Points[0].X, 0.1)
}

func TestSparkline(t *testing.T) {
	c := Sparkline(series(3, 2, 1))

	assert.False(t, c.Empty)
	assert.Len(t, c.Points, 3)
	assert.Empty(t, c.YTicks)
	assert.Empty(t, c.XLabels)
	assert.True(t, Sparkline(nil).Empty)
}
