package intent_test

import (
	"testing"

	"santral/internal/intent"

	"github.com/stretchr/testify/assert"
)

func TestPreprocess(t *testing.T) {
	assert.Equal(t, "faturam çok yüksek geldi", intent.Preprocess("  Faturam çok yüksek geldi!  "))
	assert.Equal(t, "kalan sms hakkım ne kadar", intent.Preprocess("Kalan SMS hakkım ne kadar?"))
	assert.Equal(t, "merhaba", intent.Preprocess(`"Merhaba."`))
}

func TestPredictionKnown(t *testing.T) {
	assert.True(t, intent.Prediction{Kategori: 0}.Known())
	assert.True(t, intent.Prediction{Kategori: 6}.Known())
	assert.False(t, intent.Prediction{Kategori: -1}.Known())
	assert.False(t, intent.Prediction{Kategori: 7}.Known())
}

func TestKeywordMatcher(t *testing.T) {
	m := intent.KeywordMatcher{}

	cases := map[string]intent.SubIntent{
		"son ay ne kadar kullandım":               intent.SubSonAy,
		"son 2 ay kullanımımı öğrenmek istiyorum": intent.SubSonIkiAy,
		"2 ay öncesine bakar mısınız":             intent.SubSonIkiAy,
		"son 3 ay dökümü":                         intent.SubSonUcAy,
		"kalan SMS hakkım ne kadar":               intent.SubSMS,
		"kaç dakikam kaldı":                       intent.SubDakika,
		"internetim ne kadar kaldı":               intent.SubInternet,
		"tüm haklarımı öğrenmek istiyorum":        intent.SubTumHaklar,
		"hepsi ne durumda":                        intent.SubTumHaklar,
		"kalan haklarım":                          intent.SubTumHaklar,
		"paketimi değiştirmek istiyorum":          intent.SubBilinmiyor,
	}
	for utterance, want := range cases {
		assert.Equal(t, want, m.Match(utterance), "utterance %q", utterance)
	}
}

func TestKeywordMatcher_OrderPrecedence(t *testing.T) {
	m := intent.KeywordMatcher{}
	// "son ay" wins over "internet" when both appear
	assert.Equal(t, intent.SubSonAy, m.Match("son ay internet kullanımım"))
	// "sms" wins over "dakika" in the fixed check order
	assert.Equal(t, intent.SubSMS, m.Match("sms ve dakika haklarım"))
}
