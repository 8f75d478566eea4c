package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/briandowns/spinner"
)

// ProductsAPI is the Pricing API surface the package needs.
type ProductsAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// AWS pricing client implementation
var (
	// PricingClient is the AWS Pricing API client
	PricingClient ProductsAPI

	// PricingInitOnce ensures the client is initialized only once
	PricingInitOnce sync.Once

	// pricingSpinner shows lookup progress for cache misses. Lookups run
	// from concurrent per-cluster goroutines, so creation goes through
	// pricingSpinnerOnce.
	pricingSpinner     *spinner.Spinner
	pricingSpinnerOnce sync.Once

	// InitMessage stores the API initialization message to be displayed after spinners
	InitMessage string
)

// InitPricingClient initializes the AWS pricing client from the default
// credential chain. The Pricing API is only served out of us-east-1 and
// ap-south-1, so the client is always pinned to us-east-1 regardless of
// which regions are being scanned.
func InitPricingClient() {
	pricingRegion := "us-east-1"
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(pricingRegion))
	if err != nil {
		InitMessage = fmt.Sprintf("Error loading AWS config for pricing API: %v. Cost columns will be empty.", err)
		return
	}

	PricingClient = pricing.NewFromConfig(cfg)
	InitMessage = fmt.Sprintf("AWS Pricing API initialized in %s region (https://api.pricing.%s.amazonaws.com)", pricingRegion, pricingRegion)
}

// InitPricingClientFromConfig initializes the pricing client from an already
// resolved config so a named profile carries over, still pinned to
// us-east-1.
func InitPricingClientFromConfig(cfg aws.Config) {
	PricingInitOnce.Do(func() {
		pricingCfg := cfg.Copy()
		pricingCfg.Region = "us-east-1"
		PricingClient = pricing.NewFromConfig(pricingCfg)
		InitMessage = fmt.Sprintf("AWS Pricing API initialized in %s region (https://api.pricing.%s.amazonaws.com)", pricingCfg.Region, pricingCfg.Region)
	})
}

// GetInitMessage returns the initialization message and clears it
func GetInitMessage() string {
	msg := InitMessage
	InitMessage = ""
	return msg
}

// StartPricingSpinner starts the lookup spinner with the current target
func StartPricingSpinner(resourceType, location string) {
	pricingSpinnerOnce.Do(func() {
		pricingSpinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		pricingSpinner.Color("green")
	})
	pricingSpinner.Suffix = fmt.Sprintf(" Retrieving MSK pricing: %s in %s", resourceType, location)
	pricingSpinner.Start()
}

// StopPricingSpinner stops the lookup spinner
func StopPricingSpinner() {
	if pricingSpinner != nil {
		pricingSpinner.Stop()
	}
}

// GetPriceFromAPI is a generic function to get pricing data from AWS API
func GetPriceFromAPI(ctx context.Context, serviceCode string, filters []types.Filter, resourceType, region string) (string, error) {
	// Ensure client is initialized
	PricingInitOnce.Do(InitPricingClient)

	if PricingClient == nil {
		return "", fmt.Errorf("AWS pricing client not initialized")
	}

	StartPricingSpinner(resourceType, GetRegionDescriptiveName(region))
	defer StopPricingSpinner()

	input := &pricing.GetProductsInput{
		ServiceCode: aws.String(serviceCode),
		Filters:     filters,
		MaxResults:  aws.Int32(1),
	}

	resp, err := PricingClient.GetProducts(ctx, input)
	if err != nil {
		return "", fmt.Errorf("error calling AWS Pricing API: %w", err)
	}

	if len(resp.PriceList) == 0 {
		return "", fmt.Errorf("no pricing found for %s in region %s", resourceType, region)
	}

	return resp.PriceList[0], nil
}
