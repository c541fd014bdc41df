package main

import (
	"fmt"
	"time"

	"github.com/jgoulah/cgmreport/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	runCGM     string
	runInsulin string
	runOut     string
	runNoStore bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute the manual vs auto mode report",
	Long: `Loads the CGM and insulin exports, splits the CGM readings at the first
"AUTO MODE ACTIVE PLGM OFF" alarm and writes two rows of 18 percentages
(manual first) to the result file. The report is also stored in the database.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runCGM, "cgm", "", "CGM export (default from config, then CGMData.csv)")
	runCmd.Flags().StringVar(&runInsulin, "insulin", "", "Insulin pump export (default from config, then InsulinData.csv)")
	runCmd.Flags().StringVar(&runOut, "out", "", "Result file (default from config, then Result.csv)")
	runCmd.Flags().BoolVar(&runNoStore, "no-store", false, "Do not save the report in the database")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Flags override config
	if runCGM != "" {
		cfg.Inputs.CGM = runCGM
	}
	if runInsulin != "" {
		cfg.Inputs.Insulin = runInsulin
	}
	if runOut != "" {
		cfg.Output = runOut
	}

	rep, err := pipeline.Run(pipeline.Options{
		CGMPath:     cfg.GetCGMPath(),
		InsulinPath: cfg.GetInsulinPath(),
		OutputPath:  cfg.GetOutputPath(),
		Metrics:     cfg.MetricOptions(),
		Logger:      newLogger(),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Auto mode started %s\n", rep.Boundary.Format("2006-01-02 15:04:05"))
	fmt.Printf("Manual readings: %d, auto readings: %d\n", rep.ManualCount, rep.AutoCount)
	fmt.Printf("✓ Wrote %s\n", rep.OutputPath)

	if runNoStore {
		return nil
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.InsertReport(rep); err != nil {
		return err
	}
	fmt.Printf("✓ Stored report %s (%s)\n", rep.ID, rep.CreatedAt.Local().Format(time.DateTime))
	return nil
}
