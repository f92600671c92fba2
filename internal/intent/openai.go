package intent

import (
	"context"
	"encoding/json"
	"fmt"
	log "log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/openai/openai-go/v3"
)

const systemPrompt = `
Sen bir Türkçe çağrı merkezi niyet sınıflandırıcısısın.
TEK görevin müşterinin sözünü aşağıdaki sabit kategorilerden birine atamak.

KURALLAR:
1. Sohbet ETME.
2. Soruyu CEVAPLAMA.
3. Açıklama EKLEME.
4. SADECE JSON üret. Markdown yok.

ÇIKTI FORMATI:
{"kategori": <int>, "guven": <0-100 arası sayı>}

KATEGORİLER:
0 = Fatura İtirazı (fatura yüksek geldi, fazla kesilmiş, itiraz)
1 = Paket Kalan Hak Sorgulama (kalan dakika/SMS/internet, son ay kullanımı)
2 = Borç/Ödeme Sorgulama (borcum var mı, son ödeme tarihi, fatura ödendi mi)
3 = İptal Talebi (hattı/aboneliği iptal etmek)
4 = Yeni Paket/Kampanya Sorgulama (paket değiştirme, kampanyalar, tarife önerisi)
5 = Teknik Arıza (internet çekmiyor, hat kesik, yavaş bağlantı)
6 = Sim Kart Şifre (SIM kartı şifresi, PIN/PUK)

Anlam belirsizse kategori = -1 ver.
JSON dışında hiçbir şey üretme.
`

// OpenAIClassifier fronts the pretrained model behind the chat API. Transient
// API failures are retried with exponential backoff before surfacing.
type OpenAIClassifier struct {
	client openai.Client
	model  openai.ChatModel
}

func NewOpenAIClassifier(client openai.Client) *OpenAIClassifier {
	return &OpenAIClassifier{client: client, model: openai.ChatModelGPT5Nano}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, utterance string) (Prediction, error) {
	cleaned := Preprocess(utterance)

	var out Prediction
	operation := func() error {
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(cleaned),
			},
			Model: c.model,
		})
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("no choices in response"))
		}
		content := resp.Choices[0].Message.Content
		if content == "" {
			return backoff.Permanent(fmt.Errorf("empty message content"))
		}
		if err := json.Unmarshal([]byte(content), &out); err != nil {
			return backoff.Permanent(fmt.Errorf("unmarshal prediction: %w (raw: %s)", err, content))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 15 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return Prediction{}, err
	}

	log.Debug("Classified", "text", cleaned, "kategori", out.Kategori, "guven", out.Guven)
	return out, nil
}
