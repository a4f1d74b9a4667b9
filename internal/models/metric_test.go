// ABOUTME: Tests for MetricID, units, and value kinds.
// ABOUTME: Validates the closed metric set is fully described.
package models

import (
	"testing"
)

func TestMetricIDUnit(t *testing.T) {
	tests := []struct {
		metric   MetricID
		wantUnit string
	}{
		{MetricSleepEfficiency, "%"},
		{MetricHRVAvg, "ms"},
		{MetricRHRAvg, "bpm"},
		{MetricTotalSteps, "steps"},
	}

	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			got := MetricUnits[tt.metric]
			if got != tt.wantUnit {
				t.Errorf("MetricUnits[%s] = %s, want %s", tt.metric, got, tt.wantUnit)
			}
		})
	}
}

func TestAllMetricIDsDescribed(t *testing.T) {
	if len(AllMetricIDs) != 14 {
		t.Fatalf("expected 14 metrics, got %d", len(AllMetricIDs))
	}

	for _, id := range AllMetricIDs {
		if _, ok := MetricUnits[id]; !ok {
			t.Errorf("MetricID %s has no unit defined", id)
		}
		if _, ok := MetricKinds[id]; !ok {
			t.Errorf("MetricID %s has no value kind defined", id)
		}
	}
}

func TestIsValidMetricID(t *testing.T) {
	if !IsValidMetricID("total_steps") {
		t.Error("expected total_steps to be valid")
	}
	if IsValidMetricID("weight") {
		t.Error("expected weight to be invalid")
	}
}

func TestIsValidIntent(t *testing.T) {
	for _, i := range AllIntents {
		if !IsValidIntent(string(i)) {
			t.Errorf("expected %s to be valid", i)
		}
	}
	if IsValidIntent("unknown") {
		t.Error("unknown should not be a classifiable intent")
	}
}
