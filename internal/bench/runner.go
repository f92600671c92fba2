package bench

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"math/rand"
	"strings"

	"santral/internal/config"
	"santral/internal/customer"
	"santral/internal/dialog"
	"santral/internal/history"
	"santral/internal/intent"
	"santral/internal/perf"
)

// Runner executes the generated scenarios through the real call controller.
// Hardware and API boundaries are replaced by scripted fakes; everything
// else (stores, responders, KPI tracking) is the production code path.
type Runner struct {
	Tracker *perf.Tracker
	// HistoryPath must point at a benchmark-only store, never the live
	// call history.
	HistoryPath string
	ReportPath  string
	Seed        int64
}

func (r *Runner) Run(ctx context.Context) (perf.BenchmarkReport, error) {
	rng := rand.New(rand.NewSource(r.Seed))

	hist, err := history.NewStore(r.HistoryPath)
	if err != nil {
		return perf.BenchmarkReport{}, fmt.Errorf("open history store: %w", err)
	}

	scenarios := GenerateScenarios(rng)
	log.Info("Benchmark starting", "scenarios", len(scenarios))

	for i, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			return perf.BenchmarkReport{}, err
		}

		rec := generateCustomer(rng, sc)
		ctrl := &dialog.Controller{
			Speech:     &scriptedSpeech{answers: buildScript(rec, sc)},
			Classifier: keywordClassifier{},
			Matcher:    intent.KeywordMatcher{},
			Customers:  singleFinder{rec: rec},
			History:    hist,
			Perf:       r.Tracker,
			Profile:    config.VoiceProfile{KonusmaDenemesi: 3, AramaDenemesi: 3, CevapDenemesi: 3},
			Scenario:   "test_" + sc.Type,
		}
		if err := ctrl.Run(ctx); err != nil {
			log.Warn("Scenario failed", "index", i, "type", sc.Type, "difficulty", sc.Difficulty, "err", err)
		}

		if (i+1)%10 == 0 {
			log.Info("Benchmark progress", "done", i+1, "total", len(scenarios))
		}
	}

	report := r.Tracker.Report()
	if r.ReportPath != "" {
		if err := r.Tracker.Save(r.ReportPath); err != nil {
			return report, fmt.Errorf("save report: %w", err)
		}
		log.Info("Benchmark report written", "path", r.ReportPath)
	}
	return report, nil
}

// buildScript turns a scenario into the caller's side of the conversation:
// the phone number, each request separated by yes/yes continue answers, a
// PIN verification answer where needed, and a final no.
func buildScript(rec *customer.Record, sc Scenario) []string {
	script := []string{rec.Numara}
	for i, u := range sc.Utterances {
		script = append(script, u)
		if strings.Contains(strings.ToLower(u), "şifre") {
			script = append(script, rec.TC[len(rec.TC)-2:])
		}
		if i < len(sc.Utterances)-1 {
			script = append(script, "evet", "evet")
		}
	}
	return append(script, "hayır")
}

type scriptedSpeech struct {
	answers []string
	next    int
}

func (s *scriptedSpeech) Listen(_ context.Context) (string, error) {
	if s.next >= len(s.answers) {
		return "", errors.New("script exhausted")
	}
	a := s.answers[s.next]
	s.next++
	return a, nil
}

func (s *scriptedSpeech) Speak(context.Context, string) error { return nil }

type singleFinder struct {
	rec *customer.Record
}

func (f singleFinder) Find(phone string) *customer.Record {
	if customer.Normalize(phone) == customer.Normalize(f.rec.Numara) {
		return f.rec
	}
	return nil
}

// keywordClassifier stands in for the OpenAI classifier during benchmark
// runs. Rules are ordered: complaint words win over topic words.
type keywordClassifier struct{}

func (keywordClassifier) Classify(_ context.Context, utterance string) (intent.Prediction, error) {
	u := strings.ToLower(utterance)
	switch {
	case strings.Contains(u, "itiraz") || strings.Contains(u, "yanlış"):
		return intent.Prediction{Kategori: 0, Guven: 90}, nil
	case strings.Contains(u, "iptal"):
		return intent.Prediction{Kategori: 3, Guven: 90}, nil
	case strings.Contains(u, "şifre"):
		return intent.Prediction{Kategori: 6, Guven: 90}, nil
	case strings.Contains(u, "kalan") || strings.Contains(u, "kullanım"):
		return intent.Prediction{Kategori: 1, Guven: 90}, nil
	case strings.Contains(u, "borç") || strings.Contains(u, "borc"):
		return intent.Prediction{Kategori: 2, Guven: 90}, nil
	case strings.Contains(u, "paket") || strings.Contains(u, "kampanya"):
		return intent.Prediction{Kategori: 4, Guven: 90}, nil
	case strings.Contains(u, "arıza") || strings.Contains(u, "modem") ||
		strings.Contains(u, "bağlantı") || strings.Contains(u, "yavaş") || strings.Contains(u, "ağ"):
		return intent.Prediction{Kategori: 5, Guven: 90}, nil
	default:
		return intent.Prediction{Kategori: -1, Guven: 0}, nil
	}
}
