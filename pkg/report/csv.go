package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/younsl/mskreport/internal/models"
	"github.com/younsl/mskreport/pkg/utils"
)

const reportBaseName = "msk_cluster_report"

// Filename returns the timestamped report file name for a run started at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("%s_%s.csv", reportBaseName, utils.ReportTimestamp(t))
}

// WriteCSV writes the assembled rows into a timestamped CSV file under dir
// and returns the file path. No file is written when there are no rows;
// callers treat the empty path as "nothing found".
func WriteCSV(rows []models.ReportRow, dir string, now time.Time) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	path := filepath.Join(dir, Filename(now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns()); err != nil {
		return "", fmt.Errorf("writing report header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(Record(row)); err != nil {
			return "", fmt.Errorf("writing report row for %s: %w", row.Cluster.ClusterArn, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing report: %w", err)
	}
	return path, nil
}
