// Package pipeline runs the report end to end: load both exports, find the
// switch to auto mode, split the CGM readings and write the metric rows.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jgoulah/cgmreport/internal/loader"
	"github.com/jgoulah/cgmreport/internal/metrics"
	"github.com/jgoulah/cgmreport/internal/report"
	"github.com/jgoulah/cgmreport/pkg/models"
)

// Options names the input and output locations for a run
type Options struct {
	CGMPath     string
	InsulinPath string
	OutputPath  string
	Metrics     metrics.Options
	Logger      *slog.Logger // nil discards log output
}

// Result is the outcome of the in-memory stages
type Result struct {
	Boundary  time.Time
	Manual    models.Epoch
	Auto      models.Epoch
	ManualRow models.MetricRow
	AutoRow   models.MetricRow
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l
}

// Process runs every stage except file handling
func Process(cgm, insulin io.Reader, opts metrics.Options, log *slog.Logger) (*Result, error) {
	log = logger(log)

	cgmData, err := loader.LoadCGM(cgm)
	if err != nil {
		return nil, fmt.Errorf("loading CGM data: %w", err)
	}
	log.Info("loaded CGM data",
		"readings", len(cgmData.Readings),
		"dropped_rows", cgmData.DroppedRows,
		"dropped_columns", len(cgmData.DroppedColumns))

	insulinData, err := loader.LoadInsulin(insulin)
	if err != nil {
		return nil, fmt.Errorf("loading insulin data: %w", err)
	}
	log.Info("loaded insulin data",
		"events", len(insulinData.Events),
		"dropped_columns", len(insulinData.DroppedColumns))

	boundary, err := metrics.DetectSwitch(insulinData.Events)
	if err != nil {
		return nil, fmt.Errorf("detecting auto mode switch: %w", err)
	}
	log.Info("detected auto mode switch", "boundary", boundary.Format(time.DateTime))

	res := &Result{Boundary: boundary}
	res.Manual, res.Auto = metrics.Partition(cgmData.Readings, boundary)

	for _, ep := range []struct {
		epoch models.Epoch
		row   *models.MetricRow
	}{
		{res.Manual, &res.ManualRow},
		{res.Auto, &res.AutoRow},
	} {
		s := metrics.Summarize(ep.epoch)
		log.Info("computing metrics", "mode", s.Mode, "readings", s.Readings, "days", s.Days)

		row, err := metrics.Compute(ep.epoch, opts)
		if err != nil {
			return nil, fmt.Errorf("computing %s metrics: %w", ep.epoch.Mode, err)
		}
		*ep.row = row
	}

	return res, nil
}

// Run executes the pipeline against files and writes the result file. The
// output is only replaced once every stage has succeeded.
func Run(opts Options) (*models.Report, error) {
	log := logger(opts.Logger)

	cgmFile, err := os.Open(opts.CGMPath)
	if err != nil {
		return nil, fmt.Errorf("opening CGM export: %w", err)
	}
	defer cgmFile.Close()

	insulinFile, err := os.Open(opts.InsulinPath)
	if err != nil {
		return nil, fmt.Errorf("opening insulin export: %w", err)
	}
	defer insulinFile.Close()

	res, err := Process(cgmFile, insulinFile, opts.Metrics, log)
	if err != nil {
		return nil, err
	}

	if err := writeAtomic(opts.OutputPath, res.ManualRow, res.AutoRow); err != nil {
		return nil, err
	}
	log.Info("wrote report", "path", opts.OutputPath)

	return &models.Report{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		CGMPath:     opts.CGMPath,
		InsulinPath: opts.InsulinPath,
		OutputPath:  opts.OutputPath,
		Boundary:    res.Boundary,
		ManualCount: len(res.Manual.Readings),
		AutoCount:   len(res.Auto.Readings),
		Manual:      res.ManualRow,
		Auto:        res.AutoRow,
	}, nil
}

func writeAtomic(path string, manual, auto models.MetricRow) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cgmreport-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("setting output permissions: %w", err)
	}
	if err := report.Write(tmp, manual, auto); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
