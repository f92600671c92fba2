package bench

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"santral/internal/perf"
)

func TestGenerateScenarioDistribution(t *testing.T) {
	scenarios := GenerateScenarios(rand.New(rand.NewSource(1)))
	require.Len(t, scenarios, 100)

	byType := map[string]int{}
	byDifficulty := map[string]int{}
	for _, sc := range scenarios {
		byType[sc.Type]++
		byDifficulty[sc.Difficulty]++
		assert.NotEmpty(t, sc.Utterances)
	}

	assert.Equal(t, 40, byType["package_change"])
	assert.Equal(t, 30, byType["billing_inquiry"])
	assert.Equal(t, 20, byType["technical_support"])
	assert.Equal(t, 10, byType["context_switch"])

	total := 0
	for _, n := range byDifficulty {
		total += n
	}
	assert.Equal(t, 100, total)
	assert.Contains(t, byDifficulty, "expert")
}

func TestKeywordClassifier(t *testing.T) {
	cases := map[string]int{
		"faturam yanlış, itiraz etmek istiyorum": 0,
		"kalan dakikam ne kadar":                 1,
		"fatura borcum var mı":                   2,
		"hattımı iptal etmek istiyorum":          3,
		"yeni kampanyalar neler":                 4,
		"internet bağlantım yok, arıza var":      5,
		"sim kart şifremi unuttum":               6,
		"hava durumu nasıl":                      -1,
	}
	for utterance, want := range cases {
		pred, err := keywordClassifier{}.Classify(context.Background(), utterance)
		require.NoError(t, err)
		assert.Equal(t, want, pred.Kategori, utterance)
	}
}

func TestBuildScriptInsertsPINAnswer(t *testing.T) {
	rec := generateCustomer(rand.New(rand.NewSource(7)), Scenario{})
	sc := Scenario{Utterances: []string{"sim kart şifremi unuttum"}}

	script := buildScript(rec, sc)
	require.Len(t, script, 4) // phone, request, pin digits, no
	assert.Equal(t, rec.Numara, script[0])
	assert.Equal(t, rec.TC[len(rec.TC)-2:], script[2])
	assert.Equal(t, "hayır", script[3])
}

func TestRunnerFullRun(t *testing.T) {
	dir := t.TempDir()
	tracker := perf.NewTracker()
	r := &Runner{
		Tracker:     tracker,
		HistoryPath: filepath.Join(dir, "gecmis.json"),
		ReportPath:  filepath.Join(dir, "benchmark_results.json"),
		Seed:        42,
	}

	report, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100, report.TestSummary.TotalTestCalls)
	assert.True(t, report.TestSummary.RequirementMet)
	assert.InDelta(t, 1.0, report.KPI.SuccessRate, 0.001)
	assert.Len(t, report.Scenarios, 4)

	assert.FileExists(t, r.ReportPath)
}
