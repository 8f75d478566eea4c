package formatter

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/younsl/mskreport/pkg/pricing"
)

// PrintPricingAPIStats prints the statistics of pricing API calls
func PrintPricingAPIStats() {
	stats := pricing.GetAPIStats()

	if len(stats) == 0 {
		return
	}

	fmt.Println("\n## AWS Pricing API Call Statistics")

	// Use tabwriter for clean tabular output
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)

	// Print header
	fmt.Fprintln(w, "REGION\tAPI CALLS\tSUCCESS\tFAILURE\tCACHE HITS\tSUCCESS RATE")

	regions := make([]string, 0, len(stats))
	for region := range stats {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	for _, region := range regions {
		statValues := stats[region]
		success := statValues["success"]
		failure := statValues["failure"]
		cache := statValues["cache"]
		total := success + failure

		// Calculate success rate percentage
		successRate := 0.0
		if total > 0 {
			successRate = float64(success) / float64(total) * 100.0
		}

		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.1f%%\n",
			region,
			total,
			success,
			failure,
			cache,
			successRate,
		)
	}

	w.Flush()
}
