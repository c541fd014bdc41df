package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jgoulah/cgmreport/internal/report"
	"github.com/jgoulah/cgmreport/pkg/models"
	"github.com/spf13/cobra"
)

var showFile string

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show the metrics of a stored report or a result file",
	Long: `Prints the manual and auto mode metrics of a report stored in the database,
or of a result file written by "run" when --file is given.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if showFile != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showFile, "file", "", "Read metrics from a result file instead of the database")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if showFile != "" {
		f, err := os.Open(showFile)
		if err != nil {
			return fmt.Errorf("opening result file: %w", err)
		}
		defer f.Close()

		manual, auto, err := report.Read(f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", showFile, err)
		}

		fmt.Fprintf(out, "Result file %s\n\n", showFile)
		printMetrics(out, manual, auto)
		return nil
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	r, err := db.GetReport(args[0])
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("report %s not found", args[0])
	}

	fmt.Fprintf(out, "Report %s\n", r.ID)
	fmt.Fprintf(out, "  CGM:       %s\n", r.CGMPath)
	fmt.Fprintf(out, "  Insulin:   %s\n", r.InsulinPath)
	fmt.Fprintf(out, "  Output:    %s\n", r.OutputPath)
	fmt.Fprintf(out, "  Auto mode: %s\n", r.Boundary.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  Readings:  %d manual, %d auto\n\n", r.ManualCount, r.AutoCount)

	printMetrics(out, r.Manual, r.Auto)
	return nil
}

// printMetrics writes one line per mode and window
func printMetrics(w io.Writer, manual, auto models.MetricRow) {
	fmt.Fprintf(w, "%-10s %-10s", "Mode", "Window")
	for _, c := range models.AllCategories {
		fmt.Fprintf(w, " %8s", c)
	}
	fmt.Fprintln(w)

	rows := map[models.Mode]models.MetricRow{models.ModeManual: manual, models.ModeAuto: auto}
	for _, mode := range []models.Mode{models.ModeManual, models.ModeAuto} {
		row := rows[mode]
		for _, win := range models.AllWindows {
			fmt.Fprintf(w, "%-10s %-10s", mode, win)
			for _, c := range models.AllCategories {
				fmt.Fprintf(w, " %8s", percent(row.At(win, c)))
			}
			fmt.Fprintln(w)
		}
	}
}

// percent formats a metric for display, showing "-" when undefined
func percent(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", v)
}
