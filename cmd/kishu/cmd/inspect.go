package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/kishu/recording"
)

var dbFile string // Recording database to inspect

// inspectCmd dumps the runs recorded in a database, grouped by run.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the runs recorded in a database",
	Run: func(cmd *cobra.Command, args []string) {
		if dbFile == "" {
			logrus.Fatal("No database given, use --db")
		}

		if _, err := os.Stat(dbFile); err != nil {
			logrus.Fatalf("Cannot open database: %s", err)
		}

		reader := recording.NewReader(dbFile)
		defer reader.Close()

		reader.MapTable("run_info", recording.RunInfo{})
		reader.MapTable("results", recording.ResultEntry{})

		info := queryAll(reader, "run_info")
		results := queryAll(reader, "results")

		printRuns(info, results)
	},
}

// queryAll returns all rows of a table in insertion order.
func queryAll(reader recording.Reader, tableName string) []any {
	rows, _, err := reader.Query(
		context.Background(), tableName,
		recording.QueryParams{OrderBy: "rowid"})
	if err != nil {
		logrus.Fatalf("Cannot read table %s: %s", tableName, err)
	}

	return rows
}

func printRuns(info, results []any) {
	runIDs := make([]string, 0)
	infoByRun := make(map[string][]*recording.RunInfo)

	for _, row := range info {
		entry := row.(*recording.RunInfo)

		if _, ok := infoByRun[entry.RunID]; !ok {
			runIDs = append(runIDs, entry.RunID)
		}

		infoByRun[entry.RunID] = append(infoByRun[entry.RunID], entry)
	}

	resultsByRun := make(map[string][]*recording.ResultEntry)
	for _, row := range results {
		entry := row.(*recording.ResultEntry)
		resultsByRun[entry.RunID] = append(resultsByRun[entry.RunID], entry)
	}

	for _, runID := range runIDs {
		fmt.Printf("Run %s\n", runID)

		for _, entry := range infoByRun[runID] {
			fmt.Printf("  %-18s %s\n", entry.Property+":", entry.Value)
		}

		if len(resultsByRun[runID]) > 0 {
			fmt.Println("  Results:")

			for _, entry := range resultsByRun[runID] {
				fmt.Printf("    %s = %s\n", entry.Name, entry.Value)
			}
		}

		fmt.Println()
	}
}

// init sets up the flags of the inspect command.
func init() {
	inspectCmd.Flags().StringVar(&dbFile, "db", "",
		"Path of the recording database to inspect")

	rootCmd.AddCommand(inspectCmd)
}
