package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/nsxbet/query-inspector/pkg/ingest"
	"github.com/nsxbet/query-inspector/pkg/inspector"
	"github.com/nsxbet/query-inspector/pkg/logger"
	"github.com/nsxbet/query-inspector/pkg/report"
	"github.com/nsxbet/query-inspector/pkg/schema"
	"github.com/nsxbet/query-inspector/pkg/types"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags]",
	Short: "Analyze SQL queries for performance anti-patterns",
	Long: `Analyze SQL queries from a log file, a SQL script, or the command line
against the detector catalog.

Schema-dependent detectors (missing indexes, unnecessary DISTINCT) need
either a live database connection (--dsn) or a schema snapshot file
(--schema). Without one, the text-only detectors still run.`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	// Flags for inspect command
	inspectCmd.Flags().String("log-file", "", "log file containing 'SQL:'-prefixed statements")
	inspectCmd.Flags().String("report-file", "", "file to append detected inefficiencies to (required with --log-file)")
	inspectCmd.Flags().StringArray("sql", nil, "raw SQL statement to analyze (repeatable)")
	inspectCmd.Flags().String("sql-file", "", "SQL script to split into statements and analyze")
	inspectCmd.Flags().StringP("engine", "e", "postgres", "database engine (postgres, mysql, sqlite)")
	inspectCmd.Flags().String("dsn", "", "database connection string for schema facts and EXPLAIN")
	inspectCmd.Flags().String("redis-addr", "", "redis address (host:port) for the shared EXPLAIN cache")
	inspectCmd.Flags().StringP("rules", "r", "", "path to detector configuration file")
	inspectCmd.Flags().String("schema", "", "path to schema snapshot file (YAML or JSON)")
	inspectCmd.Flags().StringP("output", "o", "text", "output format (text, json, yaml)")
	inspectCmd.Flags().Bool("fail-on-findings", false, "exit with non-zero code if any finding is reported")
	inspectCmd.Flags().Bool("validate-syntax", false, "parse statements with the engine grammar before analysis")

	// Bind flags to viper
	_ = viper.BindPFlag("log-file", inspectCmd.Flags().Lookup("log-file"))
	_ = viper.BindPFlag("report-file", inspectCmd.Flags().Lookup("report-file"))
	_ = viper.BindPFlag("sql", inspectCmd.Flags().Lookup("sql"))
	_ = viper.BindPFlag("sql-file", inspectCmd.Flags().Lookup("sql-file"))
	_ = viper.BindPFlag("engine", inspectCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("dsn", inspectCmd.Flags().Lookup("dsn"))
	_ = viper.BindPFlag("redis-addr", inspectCmd.Flags().Lookup("redis-addr"))
	_ = viper.BindPFlag("rules", inspectCmd.Flags().Lookup("rules"))
	_ = viper.BindPFlag("schema", inspectCmd.Flags().Lookup("schema"))
	_ = viper.BindPFlag("output", inspectCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("fail-on-findings", inspectCmd.Flags().Lookup("fail-on-findings"))
	_ = viper.BindPFlag("validate-syntax", inspectCmd.Flags().Lookup("validate-syntax"))
}

func runInspect(cmd *cobra.Command, args []string) error {
	// Initialize logger
	logLevel := slog.LevelInfo
	if viper.GetBool("debug") {
		logLevel = slog.LevelDebug
	} else if viper.GetBool("verbose") {
		logLevel = logger.LevelSuggestion
	}
	slog.SetDefault(logger.NewPretty(logLevel).GetSlogLogger())

	slog.Debug("Starting inspect command", "args", args)

	// Parse engine
	engineStr := viper.GetString("engine")
	engine, err := parseEngine(engineStr)
	if err != nil {
		return err
	}
	slog.Debug("Engine parsed successfully", "engine", engine)

	logFile := viper.GetString("log-file")
	sqlFile := viper.GetString("sql-file")
	rawQueries := viper.GetStringSlice("sql")
	reportFile := viper.GetString("report-file")

	// Input sources are mutually exclusive.
	switch {
	case logFile != "" && (sqlFile != "" || len(rawQueries) > 0):
		color.Red("Error: Cannot use --log-file with --sql-file or raw SQL queries.")
		return nil
	case sqlFile != "" && len(rawQueries) > 0:
		color.Red("Error: Cannot use --sql-file with raw SQL queries.")
		return nil
	case logFile != "" && reportFile == "":
		color.Red("Error: --report-file is required when using --log-file option.")
		return nil
	}

	var ingestOpts []ingest.Option
	if viper.GetBool("validate-syntax") {
		ingestOpts = append(ingestOpts, ingest.WithSyntaxValidation(engine))
	}

	// Collect query records
	var records []*types.QueryRecord
	switch {
	case logFile != "":
		records, err = ingest.FromLogFile(logFile, ingestOpts...)
	case sqlFile != "":
		records, err = ingest.FromSQLFile(sqlFile, ingestOpts...)
	case len(rawQueries) > 0:
		records = ingest.FromQueries(rawQueries, ingestOpts...)
	default:
		color.Red("Please provide either --log-file, --sql-file, or raw SQL queries.")
		return nil
	}
	if err != nil {
		return err
	}
	slog.Debug("Query records collected", "count", len(records))

	// Build the inspector
	insp := inspector.New(engine)
	if rulesPath := viper.GetString("rules"); rulesPath != "" {
		if err := insp.WithConfig(rulesPath); err != nil {
			return err
		}
	}

	// Schema facts: snapshot file or live database connection
	var analyzeOpts []inspector.Option
	var closeFacts func()
	switch {
	case viper.GetString("schema") != "":
		snap, err := schema.LoadSnapshot(viper.GetString("schema"))
		if err != nil {
			return err
		}
		analyzeOpts = append(analyzeOpts, inspector.WithFacts(schema.NewStaticFacts(snap)))
	case viper.GetString("dsn") != "":
		facts, closer, err := openLiveFacts(cmd.Context(), engine, viper.GetString("dsn"))
		if err != nil {
			return err
		}
		if err := facts.Ping(cmd.Context()); err != nil {
			closer()
			color.Red("Error: Unable to connect to the database. %v", err)
			return nil
		}
		closeFacts = closer
		analyzeOpts = append(analyzeOpts, inspector.WithFacts(facts))
	}
	if closeFacts != nil {
		defer closeFacts()
	}

	// The EXPLAIN cache only matters when a facts provider is configured.
	if addr := viper.GetString("redis-addr"); addr != "" && len(analyzeOpts) > 0 {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		cache := schema.NewRedisExplainCache(client, schema.DefaultExplainTTL)
		analyzeOpts = append(analyzeOpts, inspector.WithExplainCache(cache))
	}

	// Run the analysis
	result, err := insp.Analyze(cmd.Context(), records, analyzeOpts...)
	if err != nil {
		return err
	}
	slog.Debug("Analysis complete", "findings", result.Summary.Total)

	// Output results
	outputFormat := viper.GetString("output")
	if err := renderReport(result, outputFormat, reportFile); err != nil {
		return err
	}

	// Check exit code
	if viper.GetBool("fail-on-findings") && !result.IsClean() {
		os.Exit(1)
	}

	return nil
}

func parseEngine(engineStr string) (types.Engine, error) {
	switch strings.ToLower(engineStr) {
	case "postgres", "postgresql":
		return types.Engine_POSTGRES, nil
	case "mysql":
		return types.Engine_MYSQL, nil
	case "sqlite", "sqlite3":
		return types.Engine_SQLITE, nil
	default:
		return types.Engine_ENGINE_UNSPECIFIED, errors.Errorf("unsupported database engine: %s", engineStr)
	}
}

// liveFacts is a facts provider backed by a database connection.
type liveFacts interface {
	schema.Facts
	Ping(ctx context.Context) error
}

func openLiveFacts(ctx context.Context, engine types.Engine, dsn string) (liveFacts, func(), error) {
	switch engine {
	case types.Engine_POSTGRES:
		facts, err := schema.NewPostgresFacts(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return facts, facts.Close, nil
	case types.Engine_MYSQL:
		facts, err := schema.NewMySQLFacts(dsn)
		if err != nil {
			return nil, nil, err
		}
		return facts, func() { _ = facts.Close() }, nil
	case types.Engine_SQLITE:
		facts, err := schema.NewSQLiteFacts(dsn)
		if err != nil {
			return nil, nil, err
		}
		return facts, func() { _ = facts.Close() }, nil
	default:
		return nil, nil, errors.Errorf("no schema facts provider for engine: %s", engine)
	}
}

// renderReport routes findings to the report file when one was requested,
// otherwise to stdout in the selected format.
func renderReport(result *inspector.Report, format, reportFile string) error {
	if reportFile != "" && !result.IsClean() {
		if err := report.NewWriter(reportFile).Write(result.Findings); err != nil {
			return err
		}
		color.Green("Report written to %s", reportFile)
		return nil
	}

	switch format {
	case "json":
		return renderJSON(result)
	case "yaml":
		return renderYAML(result)
	case "text":
		return renderText(result)
	default:
		return errors.Errorf("unsupported output format: %s", format)
	}
}

func renderJSON(result *inspector.Report) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func renderYAML(result *inspector.Report) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	return encoder.Encode(result)
}

func renderText(result *inspector.Report) error {
	if result.IsClean() {
		color.Green("No inefficiencies detected.")
		return nil
	}

	color.Yellow("Inefficiencies detected:")
	for _, finding := range result.DedupeByType() {
		color.Yellow("- %s: %s", finding.Type, finding.Query)
		color.Cyan("  Suggestion: %s", finding.Suggestion)
	}
	color.Green("TIP: Provide --report-file for detailed analysis and logging")
	return nil
}
