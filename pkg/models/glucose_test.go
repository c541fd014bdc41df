package models

import (
	"testing"
	"time"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		glucose  int32
		category Category
		expected bool
	}{
		{"180 is not hyperglycemia", 180, Hyperglycemia, false},
		{"180 is in range", 180, InRange, true},
		{"181 is hyperglycemia", 181, Hyperglycemia, true},
		{"181 is out of range", 181, InRange, false},
		{"70 is in range", 70, InRange, true},
		{"70 is not hypoglycemia", 70, HypoglycemiaLevel1, false},
		{"69 is hypoglycemia", 69, HypoglycemiaLevel1, true},
		{"250 is not critical", 250, HyperglycemiaCritical, false},
		{"251 is critical", 251, HyperglycemiaCritical, true},
		{"54 is not level 2", 54, HypoglycemiaLevel2, false},
		{"53 is level 2", 53, HypoglycemiaLevel2, true},
		{"150 is in secondary range", 150, InRangeSecondary, true},
		{"151 is outside secondary range", 151, InRangeSecondary, false},
		{"70 is in secondary range", 70, InRangeSecondary, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.glucose).Has(tt.category)
			if got != tt.expected {
				t.Errorf("Classify(%d).Has(%s) = %v, want %v", tt.glucose, tt.category, got, tt.expected)
			}
		})
	}
}

func TestClassify_Exclusive(t *testing.T) {
	for g := int32(20); g <= 400; g++ {
		cs := Classify(g)
		n := 0
		for _, c := range []Category{Hyperglycemia, InRange, HypoglycemiaLevel1} {
			if cs.Has(c) {
				n++
			}
		}
		if n != 1 {
			t.Fatalf("glucose %d falls into %d primary ranges, want 1", g, n)
		}
	}
}

func TestNewGlucoseReading(t *testing.T) {
	ts := time.Date(2017, 8, 9, 3, 0, 0, 0, time.UTC)
	r := NewGlucoseReading(ts, 260)

	if !r.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", r.Timestamp, ts)
	}
	if !r.Flags.Has(Hyperglycemia) || !r.Flags.Has(HyperglycemiaCritical) {
		t.Errorf("260 mg/dL should be flagged >180 and >250")
	}
	if r.Flags.Has(InRange) {
		t.Errorf("260 mg/dL should not be in range")
	}
}

func TestInsulinEvent_IsAutoModeSwitch(t *testing.T) {
	marker := AutoModeMarker
	other := "AUTO MODE ACTIVE PLGM OFF " // trailing space does not match
	empty := ""

	tests := []struct {
		name     string
		alarm    *string
		expected bool
	}{
		{"marker", &marker, true},
		{"near miss", &other, false},
		{"empty label", &empty, false},
		{"null label", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := InsulinEvent{Alarm: tt.alarm}
			if got := e.IsAutoModeSwitch(); got != tt.expected {
				t.Errorf("IsAutoModeSwitch() = %v, want %v", got, tt.expected)
			}
		})
	}
}
