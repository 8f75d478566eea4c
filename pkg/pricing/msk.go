package pricing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"

	"github.com/younsl/mskreport/pkg/utils"
)

const mskServiceCode = "AmazonMSK"

// GetBrokerHourlyPriceWithSource returns the hourly on-demand price for one
// MSK broker instance and the source of the pricing
func GetBrokerHourlyPriceWithSource(instanceType, region string) (float64, string) {
	// Initialize pricing client if not already done
	PricingInitOnce.Do(InitPricingClient)

	cacheKey := fmt.Sprintf("%s:%s", region, instanceType)

	// Check cache first
	BrokerPricingCacheLock.RLock()
	if price, exists := BrokerPricingCache[cacheKey]; exists {
		BrokerPricingCacheLock.RUnlock()

		UpdateCacheHitStats(region)

		return price, string(PricingSourceCache)
	}
	BrokerPricingCacheLock.RUnlock()

	// Try to get pricing from AWS API only if the client is available
	if PricingClient != nil {
		price, err := getBrokerPriceFromAPI(instanceType, region)
		if err == nil {
			UpdateAPISuccessStats(region)

			BrokerPricingCacheLock.Lock()
			BrokerPricingCache[cacheKey] = price
			BrokerPricingCacheLock.Unlock()

			return price, string(PricingSourceAPI)
		}

		// Log the error but return N/A
		log.Printf("Error getting price from API: %v for %s in %s.", err, instanceType, region)
	}

	UpdateAPIFailureStats(region)

	return 0, string(PricingSourceNA)
}

// GetBrokerHourlyPrice returns the hourly price for an MSK broker instance
func GetBrokerHourlyPrice(instanceType, region string) float64 {
	price, _ := GetBrokerHourlyPriceWithSource(instanceType, region)
	return price
}

// getBrokerPriceFromAPI retrieves MSK broker pricing from the AWS Pricing API
func getBrokerPriceFromAPI(instanceType, region string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filters := []types.Filter{
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("instanceType"),
			Value: aws.String(instanceType),
		},
		{
			Type:  types.FilterTypeTermMatch,
			Field: aws.String("location"),
			Value: aws.String(GetRegionDescriptiveName(region)),
		},
	}

	priceJSON, err := GetPriceFromAPI(ctx, mskServiceCode, filters, instanceType, region)
	if err != nil {
		return 0, err
	}

	return ExtractOnDemandPrice(priceJSON)
}

// CalculateMonthlyClusterCostWithSource returns the estimated monthly cost
// for the whole broker fleet and the source of the pricing
func CalculateMonthlyClusterCostWithSource(instanceType, region string, brokerCount int32) (float64, string) {
	if brokerCount <= 0 {
		return 0, string(PricingSourceNA)
	}

	hourlyPrice, source := GetBrokerHourlyPriceWithSource(instanceType, region)

	// If we couldn't get a price, return 0 and N/A
	if source == string(PricingSourceNA) {
		return 0, string(PricingSourceNA)
	}

	return hourlyPrice * utils.GetMonthlyHours() * float64(brokerCount), source
}

// CalculateMonthlyClusterCost returns the estimated monthly cost for the
// whole broker fleet
func CalculateMonthlyClusterCost(instanceType, region string, brokerCount int32) float64 {
	monthlyCost, _ := CalculateMonthlyClusterCostWithSource(instanceType, region, brokerCount)
	return monthlyCost
}
