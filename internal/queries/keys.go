package queries

import "github.com/codyseavey/pricewatch/web/internal/query"

// Cache key resources. Each key starts with one of these followed by the
// parameters that select a variant.
const (
	ResourceProducts          = "products"
	ResourcePriceHistory      = "priceHistory"
	ResourceLatestPrices      = "latestPrices"
	ResourcePriceStats        = "priceStats"
	ResourceRecentCollections = "recentCollections"
	ResourceDashboardSummary  = "dashboardSummary"
)

func productsKey(search, status string) query.Key {
	return query.Key{ResourceProducts, search, status}
}

func priceHistoryKey(productID int64, days int) query.Key {
	return query.Key{ResourcePriceHistory, productID, days}
}

func latestPricesKey(productID int64) query.Key {
	return query.Key{ResourceLatestPrices, productID}
}

func priceStatsKey(productID int64, days int) query.Key {
	return query.Key{ResourcePriceStats, productID, days}
}

func recentCollectionsKey(limit int) query.Key {
	return query.Key{ResourceRecentCollections, limit}
}

func dashboardSummaryKey() query.Key {
	return query.Key{ResourceDashboardSummary}
}

// productWrites lists what a product mutation makes outdated
func productWrites() []query.Key {
	return []query.Key{{ResourceProducts}, {ResourceDashboardSummary}}
}
