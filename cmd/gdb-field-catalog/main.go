package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vitebski/gdb-field-catalog/internal/config"
	"github.com/vitebski/gdb-field-catalog/internal/exporter"
	"github.com/vitebski/gdb-field-catalog/internal/sample"
	"github.com/vitebski/gdb-field-catalog/internal/utils"
	"github.com/vitebski/gdb-field-catalog/internal/workspace"
)

func main() {
	var (
		workspaceLocation string
		output            string
		wildcard          string
		featureType       string
		crlf              bool
		configFile        string
		envFile           string
		logLevel          string
		analyzeOnly       bool
		verify            bool
	)

	rootCmd := &cobra.Command{
		Use:   "gdb-field-catalog",
		Short: "Export the field catalog of a geodatabase workspace to CSV",
		Long: `Geodatabase Field Catalog

Lists every feature class of a workspace (GeoPackage, spatial MySQL or PostGIS)
and writes one CSV row per field with the header FC,NAME,TYPE,LENGTH.`,
		Run: func(cmd *cobra.Command, args []string) {
			// Setup logging
			logger := utils.SetupLogging(logLevel)

			// Load environment variables
			utils.LoadEnvironmentVariables(envFile, logger)

			flags := cmd.Flags()
			cfg, err := config.LoadConfig(configFile, config.CLIFlags{
				ConfigFile:     configFile,
				ConfigFileSet:  flags.Changed("config"),
				Workspace:      workspaceLocation,
				WorkspaceSet:   flags.Changed("workspace"),
				Output:         output,
				OutputSet:      flags.Changed("output"),
				Wildcard:       wildcard,
				WildcardSet:    flags.Changed("wildcard"),
				FeatureType:    featureType,
				FeatureTypeSet: flags.Changed("feature-type"),
				CRLF:           crlf,
				CRLFSet:        flags.Changed("crlf"),
				LogLevel:       logLevel,
				LogLevelSet:    flags.Changed("log-level"),
			})
			if err != nil {
				logger.Errorf("Invalid configuration: %v", err)
				os.Exit(1)
			}
			utils.ApplyLogLevel(logger, cfg.LogLevel)

			// Open the workspace
			ws, err := workspace.Open(cfg.Workspace, logger)
			if err != nil {
				logger.Errorf("Failed to open workspace: %v", err)
				os.Exit(1)
			}
			defer ws.Close()

			// If analyze-only mode, report the workspace and exit here
			if analyzeOnly {
				classes, err := ws.Describe(cfg.ListOptions())
				if err != nil {
					logger.Errorf("Failed to analyze workspace: %v", err)
					ws.Close()
					os.Exit(1)
				}
				utils.PrintWorkspaceReport(cfg.Workspace, classes)
				logger.Info("Analyze-only mode, exiting without writing the catalog")
				return
			}

			catalogExporter := exporter.NewCatalogExporter(ws, cfg.ListOptions(), cfg.CRLF, logger)
			summary, err := catalogExporter.ExportToFile(cfg.Output)
			if err != nil {
				logger.Errorf("Export failed: %v", err)
				ws.Close()
				os.Exit(1)
			}

			// Print summary
			utils.PrintSummary(summary)

			// Verify the catalog file if requested
			if verify {
				ok, problems := utils.VerifyOutput(summary.OutputPath, summary.Rows, logger)
				utils.PrintVerificationResults(problems)
				if !ok {
					ws.Close()
					os.Exit(1)
				}
			}
		},
	}

	// Define flags
	rootCmd.Flags().StringVarP(&workspaceLocation, "workspace", "w", "", "GeoPackage path, mysql:// or postgres:// URL")
	rootCmd.Flags().StringVarP(&output, "output", "o", config.DefaultOutput, "CSV file to create or overwrite")
	rootCmd.Flags().StringVar(&wildcard, "wildcard", "*", "Feature class name filter (* wildcard)")
	rootCmd.Flags().StringVarP(&featureType, "feature-type", "t", "", "Feature type filter (Point, Multipoint, Polyline, Polygon, All)")
	rootCmd.Flags().BoolVar(&crlf, "crlf", false, "Terminate CSV lines with \\r\\n")
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "gdb-field-catalog.yaml", "Path to YAML config file")
	rootCmd.Flags().StringVarP(&envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&analyzeOnly, "analyze-only", "a", false, "Only report the workspace feature classes without writing the catalog")
	rootCmd.Flags().BoolVarP(&verify, "verify", "v", false, "Re-read the catalog file and check its header and row count")

	rootCmd.AddCommand(newSampleCommand())

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newSampleCommand() *cobra.Command {
	var (
		featureClasses int
		records        int
		logLevel       string
	)

	cmd := &cobra.Command{
		Use:   "sample <path>",
		Short: "Write a GeoPackage with random feature classes and records",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			logger := utils.SetupLogging(logLevel)

			if featureClasses < 1 {
				logger.Error("At least one feature class is required")
				os.Exit(1)
			}
			if records < 0 {
				logger.Error("Record count cannot be negative")
				os.Exit(1)
			}

			builder := sample.NewBuilder(args[0], logger)
			classes := builder.DataGenerator.RandomClasses(featureClasses)
			if err := builder.Build(classes, records); err != nil {
				logger.Errorf("Failed to write sample workspace: %v", err)
				os.Exit(1)
			}

			utils.PrintWorkspaceReport(args[0], classes)
		},
	}

	cmd.Flags().IntVarP(&featureClasses, "feature-classes", "n", utils.GetEnvInt("GDBCATALOG_SAMPLE_CLASSES", 3), "Number of feature classes to generate")
	cmd.Flags().IntVarP(&records, "records", "r", utils.GetEnvInt("GDBCATALOG_SAMPLE_RECORDS", 10), "Number of records to generate per feature class")
	cmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")

	return cmd
}
