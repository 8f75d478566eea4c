package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/younsl/mskreport/internal/models"
	"github.com/younsl/mskreport/internal/version"
	"github.com/younsl/mskreport/pkg/aws"
	"github.com/younsl/mskreport/pkg/formatter"
	"github.com/younsl/mskreport/pkg/pricing"
	"github.com/younsl/mskreport/pkg/report"
	"github.com/younsl/mskreport/pkg/utils"
)

var (
	cfgFile     string
	showVersion bool
)

// reportConfig is the fully resolved run configuration, merged from flags,
// environment and the optional config file.
type reportConfig struct {
	Profile       string
	Regions       []string
	WindowDays    int
	PeriodSeconds int
	OutputDir     string
	Pricing       bool
	S3Bucket      string
	S3Prefix      string
	Concurrency   int
	RetryAttempts int
	RetryBackoff  time.Duration
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "mskreport",
		Short: "CLI tool to report MSK cluster configuration and utilization",
		Long: `mskreport discovers every MSK cluster across one or more AWS regions,
collects CloudWatch utilization metrics for each one and writes the
combined result as a timestamped CSV report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If version flag is set, print version info and exit
			if showVersion {
				info := version.Get()
				fmt.Printf("mskreport version %s (commit: %s, built: %s, %s)\n",
					info.Version, info.GitCommit, info.BuildDate, info.GoVersion)
				return nil
			}

			return runReport(cmd.Context(), configFromViper())
		},
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mskreport.yaml)")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Print version information")
	rootCmd.Flags().StringP("profile", "p", "", "AWS shared config profile to use")
	rootCmd.Flags().StringSliceP("regions", "r", nil, "AWS regions to scan (default: all enabled regions)")
	rootCmd.Flags().Int("window-days", 7, "Metric window length in days")
	rootCmd.Flags().Int("period", 3600, "Metric datapoint period in seconds")
	rootCmd.Flags().StringP("output-dir", "o", ".", "Directory the CSV report is written to")
	rootCmd.Flags().Bool("pricing", false, "Estimate monthly broker cost via the AWS Pricing API")
	rootCmd.Flags().String("s3-bucket", "", "Upload the finished report to this S3 bucket")
	rootCmd.Flags().String("s3-prefix", "", "Key prefix for the S3 upload")
	rootCmd.Flags().Int("concurrency", 4, "Clusters processed in parallel per region")
	rootCmd.Flags().Int("retry-attempts", 3, "Attempts per CloudWatch query")
	rootCmd.Flags().Duration("retry-backoff", time.Second, "Base backoff between query retries")

	viper.BindPFlag("profile", rootCmd.Flags().Lookup("profile"))
	viper.BindPFlag("regions", rootCmd.Flags().Lookup("regions"))
	viper.BindPFlag("window_days", rootCmd.Flags().Lookup("window-days"))
	viper.BindPFlag("period", rootCmd.Flags().Lookup("period"))
	viper.BindPFlag("output_dir", rootCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("pricing", rootCmd.Flags().Lookup("pricing"))
	viper.BindPFlag("s3_bucket", rootCmd.Flags().Lookup("s3-bucket"))
	viper.BindPFlag("s3_prefix", rootCmd.Flags().Lookup("s3-prefix"))
	viper.BindPFlag("concurrency", rootCmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("retry_attempts", rootCmd.Flags().Lookup("retry-attempts"))
	viper.BindPFlag("retry_backoff", rootCmd.Flags().Lookup("retry-backoff"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// initConfig reads in the config file and environment variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search for ".mskreport.yaml" in the home directory and the
		// working directory.
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mskreport")
	}

	viper.SetEnvPrefix("MSKREPORT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func configFromViper() reportConfig {
	return reportConfig{
		Profile:       viper.GetString("profile"),
		Regions:       viper.GetStringSlice("regions"),
		WindowDays:    viper.GetInt("window_days"),
		PeriodSeconds: viper.GetInt("period"),
		OutputDir:     viper.GetString("output_dir"),
		Pricing:       viper.GetBool("pricing"),
		S3Bucket:      viper.GetString("s3_bucket"),
		S3Prefix:      viper.GetString("s3_prefix"),
		Concurrency:   viper.GetInt("concurrency"),
		RetryAttempts: viper.GetInt("retry_attempts"),
		RetryBackoff:  viper.GetDuration("retry_backoff"),
	}
}

// runReport executes the full scan and writes the report. Failures below
// region level degrade into report cells, so the run still exits zero when
// at least the scan itself could be carried out.
func runReport(ctx context.Context, cfg reportConfig) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("preparing output directory: %w", err)
	}

	sess, err := aws.NewSession(ctx, cfg.Profile)
	if err != nil {
		return err
	}
	fmt.Printf("Authenticated as %s (account %s)\n", sess.Identity, sess.AccountID)

	regions, err := aws.ResolveRegions(ctx, sess.NewRegionsClient(), cfg.Regions)
	if err != nil {
		return err
	}

	if cfg.Pricing {
		pricing.InitPricingClientFromConfig(sess.Regional(utils.GetDefaultRegion()))
		if msg := pricing.GetInitMessage(); msg != "" {
			fmt.Println(msg)
		}
	}

	window := aws.NewMetricWindow(time.Now().UTC(), cfg.WindowDays, time.Duration(cfg.PeriodSeconds)*time.Second)
	retry := aws.RetryPolicy{MaxAttempts: cfg.RetryAttempts, Backoff: cfg.RetryBackoff}

	fmt.Printf("Starting MSK scan across %d regions ...\n", len(regions))
	scanStartTime := time.Now()

	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond)
	s.Suffix = " Collecting MSK clusters and metrics ..."
	s.Start()

	// Slice to store results from all regions
	results := make([]report.RegionResult, len(regions))

	// Process each region in parallel
	var wg sync.WaitGroup
	for i, region := range regions {
		wg.Add(1)
		go func(idx int, r string) {
			defer wg.Done()

			rows, failures, err := scanRegion(ctx, sess, r, window, retry, cfg)
			results[idx] = report.RegionResult{
				Region:   r,
				Rows:     rows,
				Failures: failures,
				Err:      err,
			}
		}(i, region)
	}

	wg.Wait()

	// Calculate scan duration
	scanDuration := time.Since(scanStartTime)

	// Failed regions drop out here; the rest still make the report
	rows, allFailures := report.Merge(results)

	// Set completion message with scan time and cluster count
	s.FinalMSG = fmt.Sprintf("✓ [%d clusters found] MSK fleet scanned - Completed in %.2f seconds\n",
		len(rows), scanDuration.Seconds())
	s.Stop()

	for _, result := range results {
		if result.Err != nil {
			fmt.Printf("Error in region %s: %v\n", result.Region, result.Err)
		}
	}

	path, err := report.WriteCSV(rows, cfg.OutputDir, time.Now())
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println("No MSK clusters found. No report written.")
	} else {
		fmt.Printf("Report written to %s\n", path)
		if cfg.S3Bucket != "" {
			uploader := aws.NewReportUploader(sess.Base())
			uri, uploadErr := uploader.Upload(ctx, cfg.S3Bucket, cfg.S3Prefix, path)
			if uploadErr != nil {
				fmt.Printf("Warning: %v\n", uploadErr)
			} else {
				fmt.Printf("Report uploaded to %s\n", uri)
			}
		}
	}

	formatter.PrintClusterTable(rows, scanStartTime, scanDuration)
	formatter.PrintScanSummary(rows)
	formatter.PrintFailureSummary(allFailures)
	if cfg.Pricing {
		formatter.PrintPricingAPIStats()
	}

	return nil
}

// scanRegion enumerates one region's clusters and collects the metric,
// log and cost cells for each of them.
func scanRegion(ctx context.Context, sess *aws.Session, region string, window aws.MetricWindow, retry aws.RetryPolicy, cfg reportConfig) ([]models.ReportRow, []models.ClusterFailure, error) {
	regional := sess.Regional(region)

	scanner := aws.NewMskScanner(regional, sess.AccountID)
	clusters, failures, err := scanner.EnumerateClusters(ctx)
	if err != nil {
		return nil, nil, err
	}

	fetcher := aws.NewMetricsFetcher(regional, window, retry)
	logs := aws.NewLogsInspector(regional, retry)

	limit := cfg.Concurrency
	if limit < 1 {
		limit = 1
	}

	rows := make([]models.ReportRow, len(clusters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, cluster := range clusters {
		g.Go(func() error {
			cells := fetcher.CollectClusterMetrics(gctx, cluster)
			cells[report.ColumnBrokerLogBytes] = logs.LogGroupStoredBytes(gctx, cluster.LogGroup)
			cells[report.ColumnMonthlyCost] = clusterCostCell(cfg.Pricing, cluster)
			rows[i] = report.Normalize(cluster, cells)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return rows, failures, nil
}

// clusterCostCell estimates the monthly broker cost. Serverless clusters
// are usage-billed, so there is nothing to estimate for them.
func clusterCostCell(pricingEnabled bool, cluster models.ClusterDescriptor) models.MetricValue {
	if !pricingEnabled || !cluster.IsProvisioned() {
		return models.NotApplicable()
	}
	if cluster.BrokerInstanceType == "" || cluster.BrokerNodes == nil {
		return models.NotApplicable()
	}

	cost, source := pricing.CalculateMonthlyClusterCostWithSource(cluster.BrokerInstanceType, cluster.Region, *cluster.BrokerNodes)
	if source == string(pricing.PricingSourceNA) {
		return models.NoData()
	}
	return models.MetricOf(cost)
}
