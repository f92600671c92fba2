package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"santral/internal/config"
	"santral/internal/customer"
	"santral/internal/dialog"
	"santral/internal/history"
	"santral/internal/intent"
	"santral/internal/ipc"
	"santral/internal/notify"
	"santral/internal/perf"
	"santral/internal/proxy"
	"santral/internal/speech"
	"santral/internal/ui"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address (empty = direct)")
	uiAddr := cli.StringP("ui", "u", "127.0.0.1:8092", "UI websocket address")
	chimePath := cli.StringP("chime", "c", "beep.mp3", "Attention chime file")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Error("OPENAI_API_KEY not set")
		os.Exit(1)
	}

	cfg := config.Load()
	if err := cfg.CheckFiles(); err != nil {
		log.Error("Preflight failed", "err", err)
		os.Exit(1)
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if *proxyAddr != "" {
		httpClient, err := proxy.NewSocksClient(*proxyAddr)
		if err != nil {
			log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
			os.Exit(1)
		}
		opts = append(opts, option.WithHTTPClient(httpClient))
		log.Debug("Loaded proxy")
	}
	client := openai.NewClient(opts...)

	rec := speech.NewRecorder(cfg.Voice.MikrofonIndex)
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	stt, err := speech.NewTranscriber(cfg.Paths.WhisperModel, cfg.Voice.Dil)
	if err != nil {
		log.Error("Failed to init whisper", "err", err)
		os.Exit(1)
	}
	defer stt.Close()

	tts := speech.NewSynthesizer(client, cfg.Voice.TTSVoice, cfg.Voice.TTSFormat, cfg.Voice.ArsivDizini)
	adapter := speech.NewAdapter(rec, stt, tts, notify.NewChime(*chimePath), cfg.Voice)

	customers := customer.NewStore(cfg.Paths.Musteriler)
	hist, err := history.NewStore(cfg.Paths.Gecmis)
	if err != nil {
		log.Error("Failed to open history store", "path", cfg.Paths.Gecmis, "err", err)
		os.Exit(1)
	}
	tracker := perf.NewTracker()

	hub := ui.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.PollStats(ctx, cfg.StatsInterval, hist, tracker)
	go func() {
		if err := hub.Serve(*uiAddr); err != nil {
			log.Error("UI server stopped", "err", err)
		}
	}()

	log.Info("Boot up - successful")

	var gate dialog.Gate

	if err := ipc.StartServer(func(msg ipc.ControlMessage) {
		switch msg.Cmd {
		case ipc.CmdCagri:
			callCtx, ok := gate.Begin(ctx)
			if !ok {
				log.Warn("Call already in progress, ignoring request")
				return
			}
			defer gate.End()
			ctrl := &dialog.Controller{
				Speech:     adapter,
				Classifier: intent.NewOpenAIClassifier(client),
				Matcher:    intent.KeywordMatcher{},
				Customers:  customers,
				History:    hist,
				Perf:       tracker,
				Transcript: hub,
				Profile:    cfg.Voice,
			}
			if err := ctrl.Run(callCtx); err != nil {
				log.Error("Call failed", "err", err)
			}
			if err := tracker.Save(cfg.Paths.Metrikler); err != nil {
				log.Error("Failed to save metrics", "err", err)
			}
		case ipc.CmdDurdur:
			if gate.Stop() {
				log.Info("Stopping active call")
			} else {
				log.Info("No active call to stop")
			}
		default:
			log.Warn("Unknown command", "cmd", msg.Cmd)
		}
	}); err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}

	select {}
}
