package main

import (
	"fmt"
	"time"

	"github.com/jgoulah/cgmreport/internal/publisher"
	"github.com/jgoulah/cgmreport/pkg/models"
	"github.com/spf13/cobra"
)

var (
	publishAll bool
	publishID  string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish stored reports to MQTT and/or Home Assistant",
	Long:  `Reads stored reports from the database and publishes them to the MQTT broker and Home Assistant configured in config.yaml.`,
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().BoolVar(&publishAll, "all", false, "Force republish all reports (ignore published flag)")
	publishCmd.Flags().StringVar(&publishID, "id", "", "Publish a single report by ID")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg.MQTT.TopicPrefix = cfg.GetTopicPrefix()
	pub, err := publisher.New(cfg.MQTT, cfg.HomeAssistant)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	var reports []models.Report
	switch {
	case publishID != "":
		r, err := db.GetReport(publishID)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("report %s not found", publishID)
		}
		reports = append(reports, *r)
	case publishAll:
		reports, err = db.ListReports()
	default:
		reports, err = db.ListUnpublished()
	}
	if err != nil {
		return fmt.Errorf("listing reports: %w", err)
	}

	if len(reports) == 0 {
		fmt.Println("No unpublished reports found")
		return nil
	}

	published := 0
	for i := range reports {
		r := &reports[i]
		fmt.Printf("[%d/%d] Publishing %s... ", i+1, len(reports), r.ID)
		if err := pub.Publish(r); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			continue
		}

		if err := db.MarkPublished(r.ID); err != nil {
			fmt.Printf("✓ (warning: failed to mark as published: %v)\n", err)
		} else {
			fmt.Printf("✓\n")
		}
		published++
	}

	fmt.Printf("\nSuccessfully published %d/%d reports\n", published, len(reports))
	return nil
}
