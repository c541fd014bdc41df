package pipeline

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jgoulah/cgmreport/internal/loader"
	"github.com/jgoulah/cgmreport/internal/metrics"
	"github.com/jgoulah/cgmreport/internal/report"
	"github.com/jgoulah/cgmreport/pkg/models"
)

// Rows are deliberately out of chronological order, as in pump exports
const cgmCSV = `Index,Date,Time,New Device Time,Sensor Glucose (mg/dL),ISIG Value
0,8/10/2017,12:00:00,,150,20.1
1,8/10/2017,01:00:00,,260,19.0
2,8/9/2017,08:07:13,,100,
3,8/9/2017,02:00:00,,210,
4,8/9/2017,01:00:00,,205,
5,8/9/2017,03:00:00,,,
6,8/10/2017,13:00:00,,,21.0
7,8/10/2017,23:59:59,,50,
`

const insulinCSV = `Index,Date,Time,Bolus Volume Delivered (U),Alarm
0,8/12/2017,10:00:00,1.5,SENSOR CAL REQUIRED
1,8/9/2017,08:07:13,,AUTO MODE ACTIVE PLGM OFF
2,8/8/2017,10:00:00,2.0,
3,8/11/2017,10:00:00,,AUTO MODE ACTIVE PLGM OFF
`

func writeFixtures(t *testing.T, cgm, insulin string) Options {
	t.Helper()
	dir := t.TempDir()
	opts := Options{
		CGMPath:     filepath.Join(dir, "CGMData.csv"),
		InsulinPath: filepath.Join(dir, "InsulinData.csv"),
		OutputPath:  filepath.Join(dir, "out", "Result.csv"),
	}
	if err := os.WriteFile(opts.CGMPath, []byte(cgm), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(opts.InsulinPath, []byte(insulin), 0644); err != nil {
		t.Fatal(err)
	}
	return opts
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestProcess(t *testing.T) {
	res, err := Process(strings.NewReader(cgmCSV), strings.NewReader(insulinCSV), metrics.Options{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := res.Boundary.Format("1/2/2006 15:04:05"); got != "8/9/2017 08:07:13" {
		t.Errorf("Boundary = %s, want 8/9/2017 08:07:13", got)
	}

	// The reading at the boundary is manual; rows without glucose are gone
	if len(res.Manual.Readings) != 3 {
		t.Errorf("manual epoch has %d readings, want 3", len(res.Manual.Readings))
	}
	if len(res.Auto.Readings) != 3 {
		t.Errorf("auto epoch has %d readings, want 3", len(res.Auto.Readings))
	}

	// Manual: two overnight readings above 180 on one date
	want := 2.0 / 288 * 100
	if got := res.ManualRow.At(models.Overnight, models.Hyperglycemia); !approx(got, want) {
		t.Errorf("manual overnight >180 = %v, want %v", got, want)
	}
	if got := res.ManualRow.At(models.Daytime, models.InRange); !approx(got, 1.0/288*100) {
		t.Errorf("manual daytime 70-180 = %v", got)
	}

	// Auto: 23:59:59 counts as daytime
	if got := res.AutoRow.At(models.Daytime, models.HypoglycemiaLevel2); !approx(got, 1.0/288*100) {
		t.Errorf("auto daytime <54 = %v", got)
	}
	if got := res.AutoRow.At(models.Overnight, models.HyperglycemiaCritical); !approx(got, 1.0/288*100) {
		t.Errorf("auto overnight >250 = %v", got)
	}
}

func TestRun(t *testing.T) {
	opts := writeFixtures(t, cgmCSV, insulinCSV)

	rep, err := Run(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.ID == "" {
		t.Error("report should have an ID")
	}
	if rep.ManualCount != 3 || rep.AutoCount != 3 {
		t.Errorf("counts = %d/%d, want 3/3", rep.ManualCount, rep.AutoCount)
	}

	f, err := os.Open(opts.OutputPath)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()

	manual, auto, err := report.Read(f)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if manual != rep.Manual || auto != rep.Auto {
		t.Error("output file does not match the returned report")
	}
}

func TestRun_Idempotent(t *testing.T) {
	opts := writeFixtures(t, cgmCSV, insulinCSV)

	if _, err := Run(opts); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, err := os.ReadFile(opts.OutputPath)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Run(opts); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, err := os.ReadFile(opts.OutputPath)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("output differs between runs:\n%s\n%s", first, second)
	}
	if n := bytes.Count(first, []byte("\n")); n != 2 {
		t.Errorf("output has %d lines, want 2", n)
	}
}

func TestRun_NoAutoModeEvent(t *testing.T) {
	insulin := "Index,Date,Time,Alarm\n0,8/9/2017,08:07:13,SENSOR CAL REQUIRED\n"
	opts := writeFixtures(t, cgmCSV, insulin)

	_, err := Run(opts)
	var nae *metrics.NoAutoModeEventError
	if !errors.As(err, &nae) {
		t.Fatalf("expected NoAutoModeEventError, got %v", err)
	}
	if _, statErr := os.Stat(opts.OutputPath); !os.IsNotExist(statErr) {
		t.Error("no output should be written when the run fails")
	}
}

func TestRun_ParseError(t *testing.T) {
	cgm := "Index,Date,Time,Sensor Glucose (mg/dL)\n0,2017-08-09,08:07:13,120\n"
	opts := writeFixtures(t, cgm, insulinCSV)

	_, err := Run(opts)
	var pe *loader.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestRun_EmptyWindowError(t *testing.T) {
	// Manual epoch has no daytime readings
	cgm := "Index,Date,Time,Sensor Glucose (mg/dL)\n0,8/9/2017,01:00:00,120\n1,8/10/2017,12:00:00,120\n"
	opts := writeFixtures(t, cgm, insulinCSV)
	opts.Metrics = metrics.Options{EmptyWindow: metrics.EmptyWindowAbort}

	_, err := Run(opts)
	var ewe *metrics.EmptyWindowError
	if !errors.As(err, &ewe) {
		t.Fatalf("expected EmptyWindowError, got %v", err)
	}
}

func TestRun_MissingInput(t *testing.T) {
	opts := writeFixtures(t, cgmCSV, insulinCSV)
	opts.CGMPath = filepath.Join(t.TempDir(), "missing.csv")

	if _, err := Run(opts); err == nil {
		t.Fatal("expected error for missing CGM export")
	}
}
