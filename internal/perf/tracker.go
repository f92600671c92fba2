package perf

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/natefinch/atomic"
)

// CallMetrics is the KPI record of one call attempt, live or synthetic.
type CallMetrics struct {
	CallID               string     `json:"call_id"`
	StartTime            time.Time  `json:"start_time"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	DurationSeconds      float64    `json:"duration_seconds"`
	CustomerSatisfaction int        `json:"customer_satisfaction"` // 1-5
	SuccessRate          float64    `json:"success_rate"`          // 0 or 1 per call
	ErrorCount           int        `json:"error_count"`
	ContextSwitches      int        `json:"context_switches"`
	ToolCalls            int        `json:"tool_calls"`
	STTAccuracy          float64    `json:"stt_accuracy"`
	TTSQuality           float64    `json:"tts_quality"`
	ScenarioCompleted    bool       `json:"scenario_completed"`
	ScenarioType         string     `json:"scenario_type"`
	CustomerID           string     `json:"customer_id"`
}

// SystemMetrics aggregates completed calls.
type SystemMetrics struct {
	TotalCalls              int     `json:"total_calls"`
	SuccessfulCalls         int     `json:"successful_calls"`
	FailedCalls             int     `json:"failed_calls"`
	AvgCallDuration         float64 `json:"avg_call_duration"`
	AvgCustomerSatisfaction float64 `json:"avg_customer_satisfaction"`
	AvgSuccessRate          float64 `json:"avg_success_rate"`
	TotalErrors             int     `json:"total_errors"`
	SystemUptime            float64 `json:"system_uptime"`
	PeakConcurrentCalls     int     `json:"peak_concurrent_calls"`
	CurrentConcurrentCalls  int     `json:"current_concurrent_calls"`
}

// ScenarioMetrics aggregates completed calls of one scenario type.
type ScenarioMetrics struct {
	TotalCalls      int     `json:"total_calls"`
	SuccessfulCalls int     `json:"successful_calls"`
	SuccessRate     float64 `json:"success_rate"`
	AvgDuration     float64 `json:"avg_duration"`
	AvgSatisfaction float64 `json:"avg_satisfaction"`
	AvgToolCalls    float64 `json:"avg_tool_calls"`
	AvgErrors       float64 `json:"avg_errors"`
}

// Tracker records call KPIs in memory for the life of the process. Metrics
// are retained after completion; Save dumps a one-shot benchmark report.
type Tracker struct {
	now func() time.Time

	mu      sync.Mutex
	started time.Time
	calls   []*CallMetrics
	active  map[string]*CallMetrics
	peak    int
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		now:    time.Now,
		active: make(map[string]*CallMetrics),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.started = t.now()
	return t
}

func (t *Tracker) StartCall(callID, customerID, scenarioType string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := &CallMetrics{
		CallID:       callID,
		StartTime:    t.now(),
		CustomerID:   customerID,
		ScenarioType: scenarioType,
	}
	t.active[callID] = m
	t.calls = append(t.calls, m)
	if len(t.active) > t.peak {
		t.peak = len(t.active)
	}
}

// EndCall finalizes a call. Unknown ids report false.
func (t *Tracker) EndCall(callID string, success bool, satisfaction int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.active[callID]
	if !ok {
		return false
	}
	end := t.now()
	m.EndTime = &end
	m.DurationSeconds = end.Sub(m.StartTime).Seconds()
	m.CustomerSatisfaction = satisfaction
	m.ScenarioCompleted = success
	if success {
		m.SuccessRate = 1.0
	}
	delete(t.active, callID)
	return true
}

func (t *Tracker) LogError(callID string) { t.bump(callID, func(m *CallMetrics) { m.ErrorCount++ }) }

func (t *Tracker) LogToolCall(callID string) { t.bump(callID, func(m *CallMetrics) { m.ToolCalls++ }) }

func (t *Tracker) LogContextSwitch(callID string) {
	t.bump(callID, func(m *CallMetrics) { m.ContextSwitches++ })
}

func (t *Tracker) UpdateSTTAccuracy(callID string, accuracy float64) {
	t.bump(callID, func(m *CallMetrics) { m.STTAccuracy = accuracy })
}

func (t *Tracker) UpdateTTSQuality(callID string, quality float64) {
	t.bump(callID, func(m *CallMetrics) { m.TTSQuality = quality })
}

func (t *Tracker) bump(callID string, f func(*CallMetrics)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.active[callID]; ok {
		f(m)
	}
}

// SystemMetrics computes aggregates over completed calls.
func (t *Tracker) SystemMetrics() SystemMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	var completed []*CallMetrics
	for _, m := range t.calls {
		if m.EndTime != nil {
			completed = append(completed, m)
		}
	}
	out := SystemMetrics{
		PeakConcurrentCalls:    t.peak,
		CurrentConcurrentCalls: len(t.active),
		SystemUptime:           t.now().Sub(t.started).Seconds(),
	}
	if len(completed) == 0 {
		return out
	}

	var duration, satisfaction, success float64
	for _, m := range completed {
		duration += m.DurationSeconds
		satisfaction += float64(m.CustomerSatisfaction)
		success += m.SuccessRate
		out.TotalErrors += m.ErrorCount
		if m.SuccessRate > 0.5 {
			out.SuccessfulCalls++
		}
	}
	n := float64(len(completed))
	out.TotalCalls = len(completed)
	out.FailedCalls = out.TotalCalls - out.SuccessfulCalls
	out.AvgCallDuration = duration / n
	out.AvgCustomerSatisfaction = satisfaction / n
	out.AvgSuccessRate = success / n
	return out
}

// ScenarioMetricsByType groups completed-call aggregates by scenario type.
func (t *Tracker) ScenarioMetricsByType() map[string]ScenarioMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	grouped := make(map[string][]*CallMetrics)
	for _, m := range t.calls {
		if m.EndTime != nil {
			grouped[m.ScenarioType] = append(grouped[m.ScenarioType], m)
		}
	}

	out := make(map[string]ScenarioMetrics, len(grouped))
	for scenario, calls := range grouped {
		var sm ScenarioMetrics
		var duration, satisfaction, tools, errors float64
		for _, m := range calls {
			duration += m.DurationSeconds
			satisfaction += float64(m.CustomerSatisfaction)
			tools += float64(m.ToolCalls)
			errors += float64(m.ErrorCount)
			if m.SuccessRate > 0.5 {
				sm.SuccessfulCalls++
			}
		}
		n := float64(len(calls))
		sm.TotalCalls = len(calls)
		sm.SuccessRate = float64(sm.SuccessfulCalls) / n
		sm.AvgDuration = duration / n
		sm.AvgSatisfaction = satisfaction / n
		sm.AvgToolCalls = tools / n
		sm.AvgErrors = errors / n
		out[scenario] = sm
	}
	return out
}

// BenchmarkReport is the shape of the one-shot metrics dump.
type BenchmarkReport struct {
	ReportGenerated time.Time                  `json:"report_generated"`
	TestSummary     TestSummary                `json:"test_summary"`
	System          SystemMetrics              `json:"system_performance"`
	Scenarios       map[string]ScenarioMetrics `json:"scenario_performance"`
	KPI             KPIAnalysis                `json:"kpi_analysis"`
}

type TestSummary struct {
	TotalTestCalls  int  `json:"total_test_calls"`
	MinimumRequired int  `json:"minimum_required"`
	RequirementMet  bool `json:"requirement_met"`
}

type KPIAnalysis struct {
	SuccessRate          float64 `json:"success_rate"`
	CustomerSatisfaction float64 `json:"customer_satisfaction"`
	AvgCallDuration      float64 `json:"avg_call_duration"`
	ErrorRate            float64 `json:"error_rate"`
	SystemReliability    float64 `json:"system_reliability"`
}

// minimumTestCalls is the benchmark acceptance bar: 100 scripted scenarios.
const minimumTestCalls = 100

func (t *Tracker) Report() BenchmarkReport {
	system := t.SystemMetrics()
	scenarios := t.ScenarioMetricsByType()

	t.mu.Lock()
	testCalls := 0
	for _, m := range t.calls {
		if len(m.ScenarioType) >= 5 && m.ScenarioType[:5] == "test_" {
			testCalls++
		}
	}
	now := t.now()
	t.mu.Unlock()

	total := system.TotalCalls
	if total == 0 {
		total = 1
	}
	return BenchmarkReport{
		ReportGenerated: now,
		TestSummary: TestSummary{
			TotalTestCalls:  testCalls,
			MinimumRequired: minimumTestCalls,
			RequirementMet:  testCalls >= minimumTestCalls,
		},
		System:    system,
		Scenarios: scenarios,
		KPI: KPIAnalysis{
			SuccessRate:          system.AvgSuccessRate,
			CustomerSatisfaction: system.AvgCustomerSatisfaction,
			AvgCallDuration:      system.AvgCallDuration,
			ErrorRate:            float64(system.TotalErrors) / float64(total),
			SystemReliability:    float64(system.SuccessfulCalls) / float64(total) * 100,
		},
	}
}

// Save writes the benchmark report as one JSON document.
func (t *Tracker) Save(path string) error {
	b, err := json.MarshalIndent(t.Report(), "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(b))
}
