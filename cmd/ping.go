package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check database connectivity",
	Long:  `Verify that the connection string works by executing SELECT 1 against the database.`,
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)

	pingCmd.Flags().StringP("engine", "e", "postgres", "database engine (postgres, mysql, sqlite)")
	pingCmd.Flags().String("dsn", "", "database connection string")
	_ = pingCmd.MarkFlagRequired("dsn")
}

func runPing(cmd *cobra.Command, args []string) error {
	engineStr, _ := cmd.Flags().GetString("engine")
	engine, err := parseEngine(engineStr)
	if err != nil {
		return err
	}

	dsn, _ := cmd.Flags().GetString("dsn")
	facts, closer, err := openLiveFacts(cmd.Context(), engine, dsn)
	if err != nil {
		return err
	}
	defer closer()

	if err := facts.Ping(cmd.Context()); err != nil {
		color.Red("Error: Unable to connect to the database. %v", err)
		os.Exit(1)
	}

	color.Green("Database connection OK.")
	return nil
}
