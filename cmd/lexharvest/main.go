package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lexharvest/internal/browser"
	"lexharvest/internal/config"
	"lexharvest/internal/domain"
	"lexharvest/internal/downloader"
	"lexharvest/internal/harvest"
	"lexharvest/internal/infra/repos/runs"
	"lexharvest/internal/ledger"
	"lexharvest/internal/lexis"
	"lexharvest/internal/logging"
	"lexharvest/internal/timeutil"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "lexharvest",
		Short:        "Day-range batch downloader for the Lexis results interface",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")

	rootCmd.AddCommand(harvestCmd())
	rootCmd.AddCommand(ledgerCmd())
	rootCmd.AddCommand(runsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves configuration: env defaults, then the optional config
// file, then any explicitly set flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Load()
	if configPath != "" {
		fileCfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	stringOverrides := map[string]*string{
		"base-url":     &cfg.BaseURL,
		"query":        &cfg.SearchQuery,
		"language":     &cfg.Language,
		"download-dir": &cfg.DownloadDir,
		"ledger":       &cfg.LedgerPath,
		"runs-dsn":     &cfg.RunsDSN,
		"log-level":    &cfg.LogLevel,
	}
	for name, dst := range stringOverrides {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("batch-limit") {
		cfg.BatchLimit, _ = flags.GetInt("batch-limit")
	}
	if flags.Changed("headless") {
		cfg.Headless, _ = flags.GetBool("headless")
	}
	return cfg, nil
}

// parseRange validates the date flags. It runs before any browser work so a
// bad range exits without side effects.
func parseRange(startDate, endDate string) (domain.DateRange, error) {
	start, err := timeutil.ParseDay(startDate)
	if err != nil {
		return domain.DateRange{}, err
	}
	end, err := timeutil.ParseDay(endDate)
	if err != nil {
		return domain.DateRange{}, err
	}
	return domain.NewDateRange(start, end)
}

func harvestCmd() *cobra.Command {
	var startDate, endDate string

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Download all matching documents, one day at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := parseRange(startDate, endDate)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.BaseURL == "" {
				return fmt.Errorf("base_url is required (flag --base-url or LEXHARVEST_BASE_URL)")
			}
			if cfg.SearchQuery == "" {
				return fmt.Errorf("search query is required (flag --query or LEXHARVEST_QUERY)")
			}

			logger := logging.NewLogger(cfg.LogLevel)

			runRepo := runs.Open(cfg.RunsDSN)
			if err := runRepo.Init(); err != nil {
				return fmt.Errorf("open runs journal: %w", err)
			}
			defer runRepo.Close()

			if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
				return fmt.Errorf("create download directory: %w", err)
			}

			driver, err := browser.NewDriver(browser.Options{
				DownloadDir: cfg.DownloadDir,
				UserDataDir: cfg.UserDataDir,
				Headless:    cfg.Headless,
			})
			if err != nil {
				return err
			}
			defer driver.Close()

			session := lexis.NewSession(driver, cfg.Waits.Element, logger)
			if err := session.Open(cfg.BaseURL, cfg.SearchQuery); err != nil {
				return err
			}
			if cfg.Language != "" {
				if err := session.ApplyLanguageFilter(cfg.Language); err != nil {
					return err
				}
			}

			dl := downloader.New(driver, lexis.DownloadSelectors(), downloader.Waits{
				Element: cfg.Waits.Element,
				Spinner: cfg.Waits.Spinner,
				Success: cfg.Waits.Success,
				Drain:   cfg.Waits.Drain,
			}, cfg.BatchLimit, logger)

			orch := harvest.NewOrchestrator(
				session, dl, ledger.New(cfg.LedgerPath), runRepo, cfg.DownloadDir, logger)
			return orch.Run(rng, cfg.SearchQuery)
		},
	}

	cmd.Flags().StringVar(&startDate, "start-date", "01-01-2025", "Start date (inclusive), DD-MM-YYYY")
	cmd.Flags().StringVar(&endDate, "end-date", "31-12-2025", "End date (inclusive), DD-MM-YYYY")
	addConfigFlags(cmd)
	return cmd
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", "", "Catalog page URL to start from")
	cmd.Flags().String("query", "", "Search query")
	cmd.Flags().String("language", "", "Language filter label")
	cmd.Flags().String("download-dir", "", "Watched download directory")
	cmd.Flags().String("ledger", "", "Progress CSV path")
	cmd.Flags().String("runs-dsn", "", "Runs journal DSN (sqlite path or postgres:// URL)")
	cmd.Flags().String("log-level", "", "Log level (debug|info|warn|error)")
	cmd.Flags().Int("batch-limit", 0, "Max documents per download batch")
	cmd.Flags().Bool("headless", false, "Run the browser headless")
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Manage the progress ledger",
	}

	var startDate, endDate string

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the ledger with one incomplete row per day",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := parseRange(startDate, endDate)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := ledger.New(cfg.LedgerPath).Init(rng); err != nil {
				return err
			}
			fmt.Printf("Ledger initialized: %s (%d days)\n", cfg.LedgerPath, rng.Days())
			return nil
		},
	}
	initCmd.Flags().StringVar(&startDate, "start-date", "01-01-2025", "Start date (inclusive), DD-MM-YYYY")
	initCmd.Flags().StringVar(&endDate, "end-date", "31-12-2025", "End date (inclusive), DD-MM-YYYY")
	initCmd.Flags().String("ledger", "", "Progress CSV path")

	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			records, err := ledger.New(cfg.LedgerPath).Load()
			if err != nil {
				return err
			}

			if format == "json" {
				type row struct {
					Date          string  `json:"date"`
					Completed     bool    `json:"completed"`
					NumDocs       int     `json:"num_docs"`
					NumDownloaded int     `json:"num_downloaded"`
					TimeTaken     float64 `json:"time_taken"`
				}
				out := make([]row, 0, len(records))
				for _, r := range records {
					out = append(out, row{
						Date:          timeutil.FormatDay(r.Day),
						Completed:     r.Completed,
						NumDocs:       r.ResultCount,
						NumDownloaded: r.DownloadCount,
						TimeTaken:     r.ElapsedSeconds,
					})
				}
				data, _ := json.MarshalIndent(out, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tCOMPLETED\tDOCS\tDOWNLOADED\tTIME")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.2fs\n",
					timeutil.FormatDay(r.Day), strconv.FormatBool(r.Completed),
					r.ResultCount, r.DownloadCount, r.ElapsedSeconds)
			}
			w.Flush()
			return nil
		},
	}
	showCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")
	showCmd.Flags().String("ledger", "", "Progress CSV path")

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the harvest run journal",
	}

	var limit int
	var status string
	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List harvest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			repo := runs.Open(cfg.RunsDSN)
			if err := repo.Init(); err != nil {
				return err
			}
			defer repo.Close()

			list, err := repo.List(limit, status)
			if err != nil {
				return err
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tRANGE\tSTATUS\tSTARTED")
			for _, r := range list {
				fmt.Fprintf(w, "%s\t%s..%s\t%s\t%s\n",
					r.ID[:8], timeutil.FormatDay(r.StartDate), timeutil.FormatDay(r.EndDate),
					r.Status, r.StartedAt.Format("2006-01-02 15:04"))
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Limit results")
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")
	listCmd.Flags().String("runs-dsn", "", "Runs journal DSN")

	showCmd := &cobra.Command{
		Use:   "show <run_id>",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			repo := runs.Open(cfg.RunsDSN)
			if err := repo.Init(); err != nil {
				return err
			}
			defer repo.Close()

			run, err := repo.Get(args[0])
			if err != nil {
				return err
			}
			data, _ := yaml.Marshal(run)
			fmt.Println(string(data))
			return nil
		},
	}
	showCmd.Flags().String("runs-dsn", "", "Runs journal DSN")

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}
