// Package dialog runs one call end to end: identify the caller, then loop
// listen → classify → respond → ask-to-continue until the caller is done.
// One call, one goroutine, fully blocking; the context is the cancellation
// token checked between blocking steps.
package dialog

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	"github.com/google/uuid"

	"santral/internal/config"
	"santral/internal/customer"
	"santral/internal/history"
	"santral/internal/intent"
	"santral/internal/perf"
	"santral/internal/respond"
)

// Speech is the blocking audio boundary: one utterance in, one spoken
// reply out.
type Speech interface {
	Listen(ctx context.Context) (string, error)
	Speak(ctx context.Context, text string) error
}

// CustomerFinder answers phone-number lookups.
type CustomerFinder interface {
	Find(phone string) *customer.Record
}

// Transcript mirrors the conversation into the UI shell. Implementations
// must not block the call thread.
type Transcript interface {
	Message(gonderen, mesaj, tur string)
	Customer(rec *customer.Record)
}

// NopTranscript is used when no UI is attached.
type NopTranscript struct{}

func (NopTranscript) Message(string, string, string) {}
func (NopTranscript) Customer(*customer.Record)      {}

// ErrListenFailed means every capture attempt for one utterance failed.
var ErrListenFailed = errors.New("utterance capture failed")

// Controller orchestrates a single call over injected collaborators.
type Controller struct {
	Speech     Speech
	Classifier intent.Classifier
	Matcher    intent.SubMatcher
	Customers  CustomerFinder
	History    *history.Store
	Perf       *perf.Tracker
	Transcript Transcript
	Profile    config.VoiceProfile

	// Scenario tags the perf record; "canli" for real calls.
	Scenario string
}

type callState struct {
	callID    string
	sessionID string
	telefon   string
	rec       *customer.Record
	kategori  string // current category label
}

// Run executes one call. Any error escaping the scripted flow is reported to
// the caller as a generic apology and ends the call; the process stays up.
func (c *Controller) Run(ctx context.Context) error {
	if c.Transcript == nil {
		c.Transcript = NopTranscript{}
	}
	if c.Matcher == nil {
		c.Matcher = intent.KeywordMatcher{}
	}
	scenario := c.Scenario
	if scenario == "" {
		scenario = "canli"
	}

	st := &callState{callID: uuid.NewString()}
	c.Perf.StartCall(st.callID, "", scenario)

	err := c.run(ctx, st)
	if err != nil {
		c.Perf.LogError(st.callID)
		c.say(ctx, st, "Üzgünüm, sizi anlayamadım. Görüşme sonlandırılıyor.")
		c.closeSession(st, history.CozulmeCozulemedi)
		c.Perf.EndCall(st.callID, false, 2)
		return err
	}
	c.Perf.EndCall(st.callID, true, 5)
	return nil
}

func (c *Controller) run(ctx context.Context, st *callState) error {
	c.Transcript.Message("Sistem", "Çağrı merkezi başlatıldı", "system")
	c.say(ctx, st, "Merhaba, çağrı hizmetlerimize hoş geldiniz. Sizi tanımak adına telefon numaranızı alabilir miyim?")

	if err := c.identifyCaller(ctx, st); err != nil {
		return err
	}
	return c.supportLoop(ctx, st)
}

// identifyCaller prompts for a phone number and looks it up, retrying a
// bounded number of times before giving up on the call.
func (c *Controller) identifyCaller(ctx context.Context, st *callState) error {
	attempts := c.Profile.AramaDenemesi
	if attempts <= 0 {
		attempts = 3
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		utter, err := c.hear(ctx, st)
		if err != nil {
			return err
		}
		telefon := customer.Normalize(utter)
		c.say(ctx, st, "Bir saniye bekletiyorum...")
		if rec := c.Customers.Find(telefon); rec != nil {
			c.openSession(st, telefon, rec)
			c.say(ctx, st, fmt.Sprintf("Sayın %s", rec.Ad))
			return nil
		}
		c.Perf.LogError(st.callID)
		if attempt < attempts-1 {
			c.say(ctx, st, "Numaranız sistemde bulunamadı. Lütfen tekrar telefon numaranızı söyleyin.")
		}
	}
	return fmt.Errorf("caller not identified after %d attempts", attempts)
}

func (c *Controller) openSession(st *callState, telefon string, rec *customer.Record) {
	st.telefon = telefon
	st.rec = rec
	st.kategori = ""

	id, err := c.History.StartCall(telefon, rec.Ad)
	if err != nil {
		log.Error("Failed to open history session", "telefon", telefon, "err", err)
		id = ""
	}
	st.sessionID = id

	c.Transcript.Customer(rec)
	c.Transcript.Message("Sistem", fmt.Sprintf("Müşteri tanındı: %s (%s)", rec.Ad, telefon), "system")
}

func (c *Controller) closeSession(st *callState, cozulme string) {
	if st.sessionID == "" {
		return
	}
	if err := c.History.EndCall(st.sessionID, history.DurumTamamlandi, cozulme); err != nil {
		log.Error("Failed to close history session", "session", st.sessionID, "err", err)
	}
	st.sessionID = ""
}

// supportLoop is the open-ended support phase: one classified request per
// iteration, then the ask-to-continue exchange.
func (c *Controller) supportLoop(ctx context.Context, st *callState) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.say(ctx, st, "Size nasıl yardımcı olabilirim?")
		talep, err := c.hear(ctx, st)
		if err != nil {
			return err
		}

		pred, err := c.Classifier.Classify(ctx, talep)
		if err != nil {
			return fmt.Errorf("classify: %w", err)
		}
		if !pred.Known() {
			c.say(ctx, st, "Talebiniz anlaşılamadı. Lütfen hangi konuda yardım almak istediğinizi açık bir şekilde belirtir misiniz? Örneğin: fatura itirazı, paket değişikliği, borç sorgulama...")
			continue
		}

		kategoriAdi := config.KategoriAdi(pred.Kategori)
		c.recordCategory(st, kategoriAdi)

		yanit, ok, err := c.respond(ctx, st, pred.Kategori, talep)
		if err != nil {
			return err
		}
		if !ok {
			// sub-dispatch fallthrough already spoke a re-prompt
			continue
		}
		c.say(ctx, st, yanit)

		done, err := c.askContinue(ctx, st)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (c *Controller) recordCategory(st *callState, kategoriAdi string) {
	if st.kategori != "" && st.kategori != kategoriAdi {
		c.Perf.LogContextSwitch(st.callID)
	}
	st.kategori = kategoriAdi

	c.Transcript.Message("Sistem", fmt.Sprintf("Kategori tespit edildi: %s", kategoriAdi), "system")
	if st.sessionID == "" {
		return
	}
	if err := c.History.AppendMessage(st.sessionID, "Sistem", fmt.Sprintf("Kategori: %s", kategoriAdi), kategoriAdi); err != nil {
		log.Error("Failed to append category message", "err", err)
	}
	if err := c.History.UpdateCategory(st.sessionID, kategoriAdi); err != nil {
		log.Error("Failed to update session category", "err", err)
	}
}

// respond dispatches to the category's generator. ok=false means the flow
// should re-prompt without speaking the returned text.
func (c *Controller) respond(ctx context.Context, st *callState, kategori int, talep string) (string, bool, error) {
	c.Perf.LogToolCall(st.callID)
	rec := st.rec

	switch kategori {
	case 0:
		return respond.BillingDispute(rec), true, nil
	case 1:
		return c.respondRemaining(ctx, st, talep)
	case 2:
		return respond.DebtPayment(rec), true, nil
	case 3:
		return respond.Cancellation(rec), true, nil
	case 4:
		return respond.NewPackages(rec), true, nil
	case 5:
		return respond.TechnicalFault(rec), true, nil
	case 6:
		return c.respondSIMPin(ctx, st)
	default:
		return "", false, fmt.Errorf("unexpected category %d", kategori)
	}
}

func (c *Controller) respondRemaining(ctx context.Context, st *callState, talep string) (string, bool, error) {
	switch c.Matcher.Match(talep) {
	case intent.SubSonAy:
		return respond.LastMonths(st.rec, 1), true, nil
	case intent.SubSonIkiAy:
		return respond.LastMonths(st.rec, 2), true, nil
	case intent.SubSonUcAy:
		return respond.LastMonths(st.rec, 3), true, nil
	case intent.SubSMS:
		return respond.SingleRemaining(st.rec, respond.HakSMS), true, nil
	case intent.SubDakika:
		return respond.SingleRemaining(st.rec, respond.HakDakika), true, nil
	case intent.SubInternet:
		return respond.SingleRemaining(st.rec, respond.HakInternet), true, nil
	case intent.SubTumHaklar:
		return respond.AllRemaining(st.rec), true, nil
	default:
		c.say(ctx, st, "Paket konusundaki talebiniz anlaşılamadı. Lütfen ne yapmak istediğinizi belirtir misiniz? Paket değiştirmek mi, kalan haklarınızı öğrenmek mi?")
		return "", false, nil
	}
}

// respondSIMPin runs the secondary verification sub-dialogue before
// revealing the PIN. A failed match refuses and the call continues.
func (c *Controller) respondSIMPin(ctx context.Context, st *callState) (string, bool, error) {
	c.say(ctx, st, "Lütfen TC kimlik numaranızın son iki hanesini söyleyin.")
	spoken, err := c.hear(ctx, st)
	if err != nil {
		return "", false, err
	}
	return respond.SIMPin(st.rec, spoken), true, nil
}

// askContinue runs the yes/no exchange after a resolved request. Returns
// done=true when the call should end.
func (c *Controller) askContinue(ctx context.Context, st *callState) (bool, error) {
	attempts := c.Profile.CevapDenemesi
	if attempts <= 0 {
		attempts = 3
	}

	devam := false
	for attempt := 0; attempt < attempts; attempt++ {
		c.say(ctx, st, "Farklı bir konuda destek ister misiniz?")
		cevap, err := c.hear(ctx, st)
		if err != nil {
			return false, err
		}
		lower := strings.ToLower(cevap)
		switch {
		case strings.Contains(lower, "evet"):
			devam = true
		case strings.Contains(lower, "hayır") || strings.Contains(lower, "hayir"):
			c.finish(ctx, st)
			return true, nil
		default:
			c.say(ctx, st, "Lütfen evet veya hayır olarak cevap verin.")
			continue
		}
		break
	}
	if !devam {
		// answer never parsed within the bound; end politely instead of looping forever
		c.finish(ctx, st)
		return true, nil
	}

	return c.askSameNumber(ctx, st)
}

// askSameNumber decides whether the next request stays on the same line.
// Continuing with a new number closes the current session and opens a fresh
// one for the new caller.
func (c *Controller) askSameNumber(ctx context.Context, st *callState) (bool, error) {
	c.say(ctx, st, "Bu numara için mi devam edelim?")
	cevap, err := c.hear(ctx, st)
	if err != nil {
		return false, err
	}
	if strings.Contains(strings.ToLower(cevap), "evet") {
		return false, nil
	}

	c.say(ctx, st, "Lütfen yeni telefon numarasını söyleyin.")
	utter, err := c.hear(ctx, st)
	if err != nil {
		return false, err
	}
	telefon := customer.Normalize(utter)
	c.say(ctx, st, "Bir saniye bekletiyorum...")
	rec := c.Customers.Find(telefon)
	if rec == nil {
		c.say(ctx, st, "Numara sistemde bulunamadı. Görüşme sonlandırılıyor.")
		c.closeSession(st, history.CozulmeCozuldu)
		return true, nil
	}

	c.closeSession(st, history.CozulmeCozuldu)
	c.Perf.LogContextSwitch(st.callID)
	c.openSession(st, telefon, rec)
	c.say(ctx, st, fmt.Sprintf("Sayın %s", rec.Ad))
	return false, nil
}

func (c *Controller) finish(ctx context.Context, st *callState) {
	c.say(ctx, st, "Görüşme sonlandırılıyor. Teşekkür eder, iyi günler dileriz.")
	c.closeSession(st, history.CozulmeCozuldu)
}

// / say speaks one agent line: UI first, then the history log, then audio.
// History and audio failures are logged and swallowed; they never abort the
// call.
func (c *Controller) say(ctx context.Context, st *callState, metin string) {
	c.Transcript.Message("Temsilci", metin, "assistant")
	c.appendMessage(st, "Temsilci", metin)

	if err := c.Speech.Speak(ctx, metin); err != nil {
		log.Error("Failed to speak", "err", err)
		c.Perf.LogError(st.callID)
		c.Transcript.Message("Sistem", fmt.Sprintf("Seslendirilemedi: %v", err), "system")
	}
}

// hear captures one caller utterance, retrying failed attempts up to the
// profile bound before giving up on the call.
func (c *Controller) hear(ctx context.Context, st *callState) (string, error) {
	attempts := c.Profile.KonusmaDenemesi
	if attempts <= 0 {
		attempts = 3
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := c.Speech.Listen(ctx)
		if err != nil {
			log.Warn("Listen attempt failed", "attempt", attempt, "err", err)
			c.Perf.LogError(st.callID)
			c.retryPrompt(ctx, st, attempt, attempts)
			continue
		}
		if strings.TrimSpace(text) == "" {
			log.Warn("Empty utterance", "attempt", attempt)
			c.retryPrompt(ctx, st, attempt, attempts)
			continue
		}
		c.Transcript.Message("Müşteri", text, "customer")
		c.appendMessage(st, "Müşteri", text)
		return text, nil
	}
	return "", ErrListenFailed
}

// retryPrompt asks the caller to repeat after a failed capture. The last
// attempt gets no prompt; the caller hears the apology from the error path
// instead.
func (c *Controller) retryPrompt(ctx context.Context, st *callState, attempt, attempts int) {
	if attempt >= attempts {
		return
	}
	c.say(ctx, st, "Üzgünüm, sizi anlayamadım. Lütfen tekrar söyler misiniz?")
}

func (c *Controller) appendMessage(st *callState, gonderen, metin string) {
	if st.sessionID == "" {
		return
	}
	if err := c.History.AppendMessage(st.sessionID, gonderen, metin, st.kategori); err != nil {
		log.Error("Failed to append message", "session", st.sessionID, "err", err)
	}
}
