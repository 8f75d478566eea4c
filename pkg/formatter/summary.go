package formatter

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/younsl/mskreport/internal/models"
	"github.com/younsl/mskreport/pkg/plan"
	"github.com/younsl/mskreport/pkg/report"
	"github.com/younsl/mskreport/pkg/utils"
)

// PrintClusterTable prints a condensed view of the report rows using
// tabwriter. The CSV carries the full column set; this table is the
// at-a-glance version for the terminal.
func PrintClusterTable(rows []models.ReportRow, scanStartTime time.Time, scanDuration time.Duration) {
	if len(rows) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)

	fmt.Fprintln(w, "NAME\tREGION\tTYPE\tSTATE\tVERSION\tBROKERS\tAGE (DAYS)\tBYTES IN/S (AVG)\tBYTES OUT/S (AVG)\tLOG BYTES\tEST COST/MO")

	for _, row := range rows {
		c := row.Cluster
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ClusterName,
			c.Region,
			string(c.Kind),
			c.State,
			truncateString(c.KafkaVersion, 24),
			countCell(c.BrokerNodes),
			ageCell(c.CreationTime),
			rateCell(row.Cells[plan.AvgColumn(plan.ColumnBytesIn)]),
			rateCell(row.Cells[plan.AvgColumn(plan.ColumnBytesOut)]),
			bytesCell(row.Cells[report.ColumnBrokerLogBytes]),
			costCell(row.Cells[report.ColumnMonthlyCost]),
		)
	}

	w.Flush()
	fmt.Printf("\nShowing %d MSK clusters\n", len(rows))
	printTimestamp(scanStartTime, scanDuration)
}

// PrintScanSummary prints per-kind and per-region totals for the report.
func PrintScanSummary(rows []models.ReportRow) {
	if len(rows) == 0 {
		return
	}

	kindCounts := make(map[string]int)
	regionCounts := make(map[string]int)
	for _, row := range rows {
		kindCounts[string(row.Cluster.Kind)]++
		regionCounts[row.Cluster.Region]++
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)

	fmt.Fprintln(w, "\n## MSK REPORT SUMMARY:")
	fmt.Fprintln(w, "CLUSTER TYPE\tCOUNT")

	kinds := make([]string, 0, len(kindCounts))
	for kind := range kindCounts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(w, "%s\t%d\n", kind, kindCounts[kind])
	}
	fmt.Fprintf(w, "Total clusters:\t%d\n", len(rows))
	fmt.Fprintf(w, "Regions with clusters:\t%d\n", len(regionCounts))

	w.Flush()
}

// PrintFailureSummary lists the clusters that were discovered but dropped
// from the report because they could not be described.
func PrintFailureSummary(failures []models.ClusterFailure) {
	if len(failures) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)

	fmt.Fprintln(w, "\n## SKIPPED CLUSTERS:")
	fmt.Fprintln(w, "REGION\tCLUSTER ARN\tERROR")
	for _, failure := range failures {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			failure.Region,
			truncateString(failure.ClusterArn, 50),
			truncateString(failure.Err.Error(), 80),
		)
	}

	w.Flush()
}

func countCell(n *int32) string {
	if n == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *n)
}

func ageCell(created *time.Time) string {
	if created == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", utils.CalculateElapsedDays(*created))
}

func rateCell(v models.MetricValue) string {
	if v.State != models.MetricOK {
		return v.String()
	}
	return humanize.Bytes(uint64(v.Value)) + "/s"
}

func bytesCell(v models.MetricValue) string {
	if v.State != models.MetricOK {
		return v.String()
	}
	return humanize.Bytes(uint64(v.Value))
}

func costCell(v models.MetricValue) string {
	if v.State != models.MetricOK {
		return v.String()
	}
	return fmt.Sprintf("$%.2f", v.Value)
}
