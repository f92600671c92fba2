package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Kategoriler is the fixed label set the classifier predicts into.
// Indices are the model's output classes and must not be reordered.
var Kategoriler = map[int]string{
	0: "Fatura İtirazı",
	1: "Paket Kalan Hak Sorgulama",
	2: "Borç/Ödeme Sorgulama",
	3: "İptal Talebi",
	4: "Yeni Paket/Kampanya Sorgulama",
	5: "Teknik Arıza",
	6: "Sim Kart Şifre",
}

// KategoriAdi returns the display label for a class index, "Bilinmiyor"
// for anything outside the known set.
func KategoriAdi(kategori int) string {
	if ad, ok := Kategoriler[kategori]; ok {
		return ad
	}
	return "Bilinmiyor"
}

type Paths struct {
	DataDir      string
	Musteriler   string // customer records, JSON array
	Gecmis       string // conversation history document
	Metrikler    string // performance metrics dump
	Benchmark    string // benchmark report dump
	BenchGecmis  string // benchmark run history, kept apart from live calls
	WhisperModel string
}

// VoiceProfile carries the tunables of the speech pipeline. Defaults mirror
// the shipped profile: Turkish, 16 kHz capture, bounded retries everywhere.
type VoiceProfile struct {
	Dil             string // BCP-47-ish tag for STT/TTS, "tr"
	MikrofonIndex   int
	DinlemeTimeout  time.Duration // max wait for one utterance
	SessizlikEsigi  float64       // RMS below this counts as silence
	SessizlikSuresi time.Duration // trailing silence that ends an utterance
	KonusmaDenemesi int           // capture attempts per utterance
	AramaDenemesi   int           // lookup attempts before giving up
	CevapDenemesi   int           // yes/no parse attempts before giving up
	TTSFormat       string        // mp3, wav or ogg
	TTSVoice        string
	ArsivDizini     string // when set, captured utterances are kept as wav
	DuckBackground  bool
}

type Config struct {
	Paths         Paths
	Voice         VoiceProfile
	StatsInterval time.Duration
}

func Load() Config {
	dataDir := envOr("SANTRAL_DATA_DIR", "data")

	return Config{
		Paths: Paths{
			DataDir:      dataDir,
			Musteriler:   envOr("SANTRAL_MUSTERI_FILE", filepath.Join(dataDir, "kullanici_faturalar.json")),
			Gecmis:       envOr("SANTRAL_GECMIS_FILE", filepath.Join(dataDir, "gecmis_gorusmeler.json")),
			Metrikler:    envOr("SANTRAL_METRIK_FILE", filepath.Join(dataDir, "performance_metrics.json")),
			Benchmark:    envOr("SANTRAL_BENCHMARK_FILE", filepath.Join(dataDir, "benchmark_results.json")),
			BenchGecmis:  envOr("SANTRAL_BENCH_GECMIS_FILE", filepath.Join(dataDir, "benchmark_gecmis.json")),
			WhisperModel: envOr("SANTRAL_WHISPER_MODEL", "third_party/whisper.cpp/models/ggml-medium.bin"),
		},
		Voice: VoiceProfile{
			Dil:             envOr("SANTRAL_DIL", "tr"),
			MikrofonIndex:   envIntOr("SANTRAL_MIKROFON_INDEX", 0),
			DinlemeTimeout:  envDurOr("SANTRAL_DINLEME_TIMEOUT", 20*time.Second),
			SessizlikEsigi:  0.015,
			SessizlikSuresi: 600 * time.Millisecond,
			KonusmaDenemesi: envIntOr("SANTRAL_KONUSMA_DENEME", 3),
			AramaDenemesi:   envIntOr("SANTRAL_ARAMA_DENEME", 3),
			CevapDenemesi:   envIntOr("SANTRAL_CEVAP_DENEME", 3),
			TTSFormat:       envOr("SANTRAL_TTS_FORMAT", "mp3"),
			TTSVoice:        envOr("SANTRAL_TTS_VOICE", "alloy"),
			ArsivDizini:     os.Getenv("SANTRAL_ARSIV_DIZINI"),
			DuckBackground:  os.Getenv("SANTRAL_DUCK") == "1",
		},
		StatsInterval: envDurOr("SANTRAL_STATS_INTERVAL", 5*time.Second),
	}
}

// CheckFiles is the launcher preflight: the daemon refuses to boot without
// its customer data and STT model on disk.
func (c Config) CheckFiles() error {
	required := []string{c.Paths.Musteriler, c.Paths.WhisperModel}
	for _, p := range required {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("required file missing: %s: %w", p, err)
		}
	}
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envIntOr(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDurOr(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
