package pricing

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/younsl/mskreport/pkg/utils"
)

// UpdateCacheHitStats updates stats when a cache hit occurs
func UpdateCacheHitStats(region string) {
	updatePricingAPIStats(region, "cache")
}

// UpdateAPISuccessStats updates stats when an API call succeeds
func UpdateAPISuccessStats(region string) {
	updatePricingAPIStats(region, "success")
}

// UpdateAPIFailureStats updates stats when an API call fails
func UpdateAPIFailureStats(region string) {
	updatePricingAPIStats(region, "failure")
}

// updatePricingAPIStats updates the tracking statistics for Pricing API calls
func updatePricingAPIStats(region, statType string) {
	PricingAPIStatsLock.Lock()
	defer PricingAPIStatsLock.Unlock()

	if _, exists := PricingAPIStats[region]; !exists {
		PricingAPIStats[region] = map[string]int{
			"success": 0,
			"failure": 0,
			"cache":   0,
		}
	}

	PricingAPIStats[region][statType]++
}

// GetAPIStats returns a copy of the current API call statistics
func GetAPIStats() map[string]map[string]int {
	PricingAPIStatsLock.RLock()
	defer PricingAPIStatsLock.RUnlock()

	stats := make(map[string]map[string]int, len(PricingAPIStats))
	for region, counters := range PricingAPIStats {
		regionStats := make(map[string]int, len(counters))
		for statType, count := range counters {
			regionStats[statType] = count
		}
		stats[region] = regionStats
	}
	return stats
}

// GetRegionDescriptiveName returns the human-readable region name used in AWS Pricing API
func GetRegionDescriptiveName(region string) string {
	return utils.GetRegionDescriptiveName(region)
}

// ExtractOnDemandPrice extracts the on-demand price from the pricing data JSON
func ExtractOnDemandPrice(priceJSON string) (float64, error) {
	priceData, err := parsePriceDocument(priceJSON)
	if err != nil {
		return 0, fmt.Errorf("error parsing pricing data: %w", err)
	}

	// The structure of the pricing data can be complex and may change
	terms, ok := priceData["terms"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("terms field not found or invalid")
	}

	onDemand, ok := terms["OnDemand"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("OnDemand field not found or invalid")
	}

	// Extract the first skuOffer
	skuOffer, err := firstMapValue(onDemand)
	if err != nil {
		return 0, fmt.Errorf("no SKU offer found")
	}

	skuOfferMap, ok := skuOffer.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("SKU offer is not a map")
	}

	priceDimensions, ok := skuOfferMap["priceDimensions"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("priceDimensions field not found or invalid")
	}

	// Extract the first price dimension
	dimension, err := firstMapValue(priceDimensions)
	if err != nil {
		return 0, fmt.Errorf("no price dimension found")
	}

	dimensionMap, ok := dimension.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("price dimension is not a map")
	}

	pricePerUnit, ok := dimensionMap["pricePerUnit"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("pricePerUnit field not found or invalid")
	}

	usd, ok := pricePerUnit["USD"].(string)
	if !ok {
		return 0, fmt.Errorf("USD price not found or invalid")
	}

	price, err := strconv.ParseFloat(usd, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing price: %w", err)
	}

	return price, nil
}

func parsePriceDocument(priceJSON string) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(priceJSON), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func firstMapValue(m map[string]interface{}) (interface{}, error) {
	for _, v := range m {
		return v, nil
	}
	return nil, fmt.Errorf("map is empty")
}
