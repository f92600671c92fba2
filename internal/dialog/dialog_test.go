package dialog_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"santral/internal/config"
	"santral/internal/customer"
	"santral/internal/dialog"
	"santral/internal/history"
	"santral/internal/intent"
	"santral/internal/perf"
)

type scriptedSpeech struct {
	answers []string
	next    int
	spoken  []string
}

func (s *scriptedSpeech) Listen(_ context.Context) (string, error) {
	if s.next >= len(s.answers) {
		return "", errors.New("script exhausted")
	}
	a := s.answers[s.next]
	s.next++
	return a, nil
}

func (s *scriptedSpeech) Speak(_ context.Context, text string) error {
	s.spoken = append(s.spoken, text)
	return nil
}

func (s *scriptedSpeech) saidContaining(sub string) bool {
	for _, line := range s.spoken {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

type ruleClassifier struct{}

func (ruleClassifier) Classify(_ context.Context, utterance string) (intent.Prediction, error) {
	u := strings.ToLower(utterance)
	switch {
	case strings.Contains(u, "fatura"):
		return intent.Prediction{Kategori: 0, Guven: 95}, nil
	case strings.Contains(u, "kalan") || strings.Contains(u, "sms") || strings.Contains(u, "paket"):
		return intent.Prediction{Kategori: 1, Guven: 90}, nil
	case strings.Contains(u, "borç"):
		return intent.Prediction{Kategori: 2, Guven: 90}, nil
	case strings.Contains(u, "şifre"):
		return intent.Prediction{Kategori: 6, Guven: 90}, nil
	default:
		return intent.Prediction{Kategori: -1, Guven: 0}, nil
	}
}

type mapFinder map[string]*customer.Record

func (m mapFinder) Find(phone string) *customer.Record {
	return m[customer.Normalize(phone)]
}

func elif() *customer.Record {
	odendi := true
	return &customer.Record{
		Numara:   "05375944025",
		Ad:       "Elif Demir",
		TC:       "12345678942",
		SimSifre: "4025",
		Paket: customer.Paket{
			Isim:   "SuperNet 50",
			Fiyat:  150,
			Dakika: 1000,
			SMS:    500,
			DataGB: 5000,
		},
		KalanHaklar: customer.KalanHaklar{
			KalanDakika:   350,
			KalanSMS:      120,
			KalanInternet: 2.5,
		},
		FaturaOdendiMi: &odendi,
		SonOdemeTarihi: "2025-07-26",
	}
}

func newController(t *testing.T, sp *scriptedSpeech, finder dialog.CustomerFinder) (*dialog.Controller, *history.Store, *perf.Tracker) {
	t.Helper()
	hs, err := history.NewStore(filepath.Join(t.TempDir(), "gecmis.json"))
	require.NoError(t, err)
	tr := perf.NewTracker()
	return &dialog.Controller{
		Speech:     sp,
		Classifier: ruleClassifier{},
		Matcher:    intent.KeywordMatcher{},
		Customers:  finder,
		History:    hs,
		Perf:       tr,
		Profile:    config.VoiceProfile{KonusmaDenemesi: 3, AramaDenemesi: 3, CevapDenemesi: 3},
		Scenario:   "test_dialog",
	}, hs, tr
}

func TestCallSMSInquiry(t *testing.T) {
	sp := &scriptedSpeech{answers: []string{
		"5375944025",
		"kalan sms haklarımı öğrenmek istiyorum",
		"hayır",
	}}
	ctrl, hs, tr := newController(t, sp, mapFinder{"05375944025": elif()})

	require.NoError(t, ctrl.Run(context.Background()))

	assert.True(t, sp.saidContaining("Sayın Elif Demir"))
	assert.True(t, sp.saidContaining("SuperNet 50 paketinizden kalan SMS hakkınız: 120 SMS'dir."))
	assert.True(t, sp.saidContaining("Teşekkür eder"))

	sessions := hs.CustomerSessions("05375944025", 0)
	require.Len(t, sessions, 1)
	assert.Equal(t, history.DurumTamamlandi, sessions[0].Durum)
	assert.Equal(t, history.CozulmeCozuldu, sessions[0].CozulmeDurumu)
	assert.Equal(t, "Paket Kalan Hak Sorgulama", sessions[0].Kategori)

	m := tr.SystemMetrics()
	assert.Equal(t, 1, m.TotalCalls)
	assert.InDelta(t, 1.0, m.AvgSuccessRate, 0.001)
}

func TestCallUnknownCallerAborts(t *testing.T) {
	sp := &scriptedSpeech{answers: []string{"1112223344", "1112223344", "1112223344"}}
	ctrl, hs, tr := newController(t, sp, mapFinder{})

	err := ctrl.Run(context.Background())
	require.Error(t, err)

	assert.True(t, sp.saidContaining("Numaranız sistemde bulunamadı"))
	assert.True(t, sp.saidContaining("Görüşme sonlandırılıyor"))
	assert.Equal(t, 0, hs.Stats().ToplamGorusme)
	assert.InDelta(t, 0.0, tr.SystemMetrics().AvgSuccessRate, 0.001)
}

func TestCallUnknownCategoryReprompts(t *testing.T) {
	sp := &scriptedSpeech{answers: []string{
		"5375944025",
		"hava durumu nasıl",
		"faturama itiraz etmek istiyorum",
		"hayır",
	}}
	ctrl, _, _ := newController(t, sp, mapFinder{"05375944025": elif()})

	require.NoError(t, ctrl.Run(context.Background()))

	assert.True(t, sp.saidContaining("Talebiniz anlaşılamadı"))
	assert.True(t, sp.saidContaining("Fatura analiz sonucu"))
}

func TestCallAmbiguousContinueAnswerEndsPolitely(t *testing.T) {
	sp := &scriptedSpeech{answers: []string{
		"5375944025",
		"sms hakkım ne kadar",
		"belki", "bilmem", "olabilir",
	}}
	ctrl, hs, _ := newController(t, sp, mapFinder{"05375944025": elif()})

	require.NoError(t, ctrl.Run(context.Background()))

	assert.True(t, sp.saidContaining("Lütfen evet veya hayır olarak cevap verin."))
	assert.True(t, sp.saidContaining("Teşekkür eder"))
	sessions := hs.CustomerSessions("05375944025", 0)
	require.Len(t, sessions, 1)
	assert.Equal(t, history.DurumTamamlandi, sessions[0].Durum)
}

func TestCallSwitchToNewNumber(t *testing.T) {
	mehmet := elif()
	mehmet.Numara = "05301112233"
	mehmet.Ad = "Mehmet Kaya"
	finder := mapFinder{"05375944025": elif(), "05301112233": mehmet}

	sp := &scriptedSpeech{answers: []string{
		"5375944025",
		"sms hakkım kaldı mı",
		"evet",        // another topic
		"hayır",       // not this number
		"05301112233", // the new number
		"borç durumumu öğrenmek istiyorum",
		"hayır",
	}}
	ctrl, hs, _ := newController(t, sp, finder)

	require.NoError(t, ctrl.Run(context.Background()))

	assert.True(t, sp.saidContaining("Sayın Mehmet Kaya"))

	first := hs.CustomerSessions("05375944025", 0)
	require.Len(t, first, 1)
	assert.Equal(t, history.DurumTamamlandi, first[0].Durum)

	second := hs.CustomerSessions("05301112233", 0)
	require.Len(t, second, 1)
	assert.Equal(t, "Borç/Ödeme Sorgulama", second[0].Kategori)
}

func TestCallSIMPinVerification(t *testing.T) {
	sp := &scriptedSpeech{answers: []string{
		"5375944025",
		"sim kart şifremi unuttum",
		"kırk iki 42",
		"hayır",
	}}
	ctrl, _, _ := newController(t, sp, mapFinder{"05375944025": elif()})

	require.NoError(t, ctrl.Run(context.Background()))

	assert.True(t, sp.saidContaining("son iki hanesini söyleyin"))
	assert.True(t, sp.saidContaining("4025"))
}

func TestCallCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sp := &scriptedSpeech{answers: []string{"5375944025"}}
	ctrl, _, _ := newController(t, sp, mapFinder{"05375944025": elif()})

	err := ctrl.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

type flakySpeech struct {
	scriptedSpeech
	failures int
}

func (s *flakySpeech) Listen(ctx context.Context) (string, error) {
	if s.failures > 0 {
		s.failures--
		return "", errors.New("capture failed")
	}
	return s.scriptedSpeech.Listen(ctx)
}

func TestCallRepromptsOnEmptyUtterance(t *testing.T) {
	sp := &scriptedSpeech{answers: []string{
		"",
		"5375944025",
		"kalan sms haklarımı öğrenmek istiyorum",
		"hayır",
	}}
	ctrl, hs, _ := newController(t, sp, mapFinder{"05375944025": elif()})

	require.NoError(t, ctrl.Run(context.Background()))

	assert.True(t, sp.saidContaining("Lütfen tekrar söyler misiniz"))
	assert.True(t, sp.saidContaining("Teşekkür eder"))

	sessions := hs.CustomerSessions("05375944025", 0)
	require.Len(t, sessions, 1)
	assert.Equal(t, history.CozulmeCozuldu, sessions[0].CozulmeDurumu)
}

func TestCallRepromptsOnCaptureError(t *testing.T) {
	sp := &flakySpeech{
		scriptedSpeech: scriptedSpeech{answers: []string{
			"5375944025",
			"kalan sms haklarımı öğrenmek istiyorum",
			"hayır",
		}},
		failures: 1,
	}
	ctrl, _, tr := newController(t, &sp.scriptedSpeech, mapFinder{"05375944025": elif()})
	ctrl.Speech = sp

	require.NoError(t, ctrl.Run(context.Background()))

	assert.True(t, sp.saidContaining("Lütfen tekrar söyler misiniz"))
	assert.True(t, sp.saidContaining("Sayın Elif Demir"))

	m := tr.SystemMetrics()
	assert.Equal(t, 1, m.TotalCalls)
}
