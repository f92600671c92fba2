package perf_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"santral/internal/perf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTracker() (*perf.Tracker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 10, 14, 0, 0, 0, time.Local)}
	return perf.NewTracker(perf.WithClock(clock.now)), clock
}

func TestSingleCall_Averages(t *testing.T) {
	tracker, clock := newTracker()

	tracker.StartCall("c1", "05375944025", "canli")
	clock.advance(90 * time.Second)
	require.True(t, tracker.EndCall("c1", true, 5))

	m := tracker.SystemMetrics()
	assert.Equal(t, 1, m.TotalCalls)
	assert.Equal(t, 1, m.SuccessfulCalls)
	assert.Equal(t, 0, m.FailedCalls)
	assert.Equal(t, 5.0, m.AvgCustomerSatisfaction)
	assert.Equal(t, 1.0, m.AvgSuccessRate)
	assert.Equal(t, 90.0, m.AvgCallDuration)
	assert.Equal(t, 0, m.CurrentConcurrentCalls)
}

func TestEndCall_UnknownID(t *testing.T) {
	tracker, _ := newTracker()
	assert.False(t, tracker.EndCall("yok", true, 5))
}

func TestCounters_OnlyWhileActive(t *testing.T) {
	tracker, _ := newTracker()
	tracker.StartCall("c1", "", "canli")
	tracker.LogError("c1")
	tracker.LogToolCall("c1")
	tracker.LogToolCall("c1")
	tracker.LogContextSwitch("c1")
	require.True(t, tracker.EndCall("c1", false, 2))

	// counters after completion are dropped
	tracker.LogError("c1")

	m := tracker.SystemMetrics()
	assert.Equal(t, 1, m.TotalErrors)
	assert.Equal(t, 1, m.FailedCalls)
	assert.Equal(t, 0, m.SuccessfulCalls)
}

func TestScenarioMetrics_GroupedByType(t *testing.T) {
	tracker, clock := newTracker()

	tracker.StartCall("a", "", "test_package_change")
	clock.advance(10 * time.Second)
	tracker.EndCall("a", true, 5)

	tracker.StartCall("b", "", "test_package_change")
	clock.advance(20 * time.Second)
	tracker.EndCall("b", false, 2)

	tracker.StartCall("c", "", "test_billing_inquiry")
	clock.advance(30 * time.Second)
	tracker.EndCall("c", true, 4)

	byType := tracker.ScenarioMetricsByType()
	require.Len(t, byType, 2)

	pkg := byType["test_package_change"]
	assert.Equal(t, 2, pkg.TotalCalls)
	assert.Equal(t, 1, pkg.SuccessfulCalls)
	assert.Equal(t, 0.5, pkg.SuccessRate)
	assert.Equal(t, 3.5, pkg.AvgSatisfaction)

	bill := byType["test_billing_inquiry"]
	assert.Equal(t, 1, bill.TotalCalls)
	assert.Equal(t, 30.0, bill.AvgDuration)
}

func TestPeakConcurrency(t *testing.T) {
	tracker, _ := newTracker()
	tracker.StartCall("a", "", "canli")
	tracker.StartCall("b", "", "canli")
	tracker.EndCall("a", true, 5)

	m := tracker.SystemMetrics()
	assert.Equal(t, 2, m.PeakConcurrentCalls)
	assert.Equal(t, 1, m.CurrentConcurrentCalls)
}

func TestReportAndSave(t *testing.T) {
	tracker, clock := newTracker()
	for i := 0; i < 3; i++ {
		tracker.StartCall(string(rune('a'+i)), "", "test_technical_support")
		clock.advance(5 * time.Second)
		tracker.EndCall(string(rune('a'+i)), true, 5)
	}

	report := tracker.Report()
	assert.Equal(t, 3, report.TestSummary.TotalTestCalls)
	assert.False(t, report.TestSummary.RequirementMet)
	assert.Equal(t, 1.0, report.KPI.SuccessRate)
	assert.Equal(t, 100.0, report.KPI.SystemReliability)

	path := filepath.Join(t.TempDir(), "performance_metrics.json")
	require.NoError(t, tracker.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded perf.BenchmarkReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 3, decoded.System.TotalCalls)
}
