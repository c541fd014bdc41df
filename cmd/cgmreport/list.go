package main

import (
	"fmt"

	"github.com/jgoulah/cgmreport/pkg/models"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports",
	Long:  `Displays all stored reports from the database, newest first.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	reports, err := db.ListReports()
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}

	if len(reports) == 0 {
		fmt.Println("No reports found")
		return nil
	}

	fmt.Println("------------------------------------------------------------------------------------------")
	fmt.Printf("%-36s  %-19s  %-19s  %8s  %8s  %s\n", "ID", "Created", "Auto mode from", "TIR man", "TIR auto", "Published")
	fmt.Println("------------------------------------------------------------------------------------------")

	for _, r := range reports {
		published := ""
		if r.Published {
			published = "✓"
		}
		fmt.Printf("%-36s  %-19s  %-19s  %8s  %8s  %s\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Boundary.Format("2006-01-02 15:04:05"),
			percent(r.Manual.At(models.WholeDay, models.InRange)),
			percent(r.Auto.At(models.WholeDay, models.InRange)),
			published,
		)
	}

	fmt.Println("------------------------------------------------------------------------------------------")
	fmt.Printf("Total: %d reports\n", len(reports))
	return nil
}
