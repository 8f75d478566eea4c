package pricing

import (
	"sync"
)

// PricingSource represents the source of pricing information
type PricingSource string

const (
	// PricingSourceAPI indicates pricing data came from AWS API
	PricingSourceAPI PricingSource = "API"

	// PricingSourceCache indicates pricing data came from cache
	PricingSourceCache PricingSource = "Cache"

	// PricingSourceNA indicates pricing data is not available
	PricingSourceNA PricingSource = "N/A"
)

// Stats tracking for pricing API calls
var (
	// PricingAPIStats tracks API call statistics by region
	PricingAPIStats = make(map[string]map[string]int) // region -> {success, failure, cache}

	// PricingAPIStatsLock protects the stats map from concurrent access
	PricingAPIStatsLock sync.RWMutex
)

// Broker price cache
var (
	// BrokerPricingCache caches MSK broker pricing data by region and
	// instance type
	BrokerPricingCache = make(map[string]float64)

	// BrokerPricingCacheLock protects the broker cache from concurrent access
	BrokerPricingCacheLock sync.RWMutex
)
