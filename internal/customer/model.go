package customer

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one subscriber as stored in kullanici_faturalar.json. The data
// file predates this service and is hand-edited, so decoding tolerates the
// key spelling variants that exist in the wild (see UnmarshalJSON below).
type Record struct {
	Numara         string       `json:"numara"`
	Ad             string       `json:"ad"`
	TC             string       `json:"tc"`
	SimSifre       string       `json:"sim_sifre"`
	Paket          Paket        `json:"numaraya_tanimli_paket"`
	KalanHaklar    KalanHaklar  `json:"kalan_kullanim_haklari"`
	Son4AyKullanim []AyKullanim `json:"son_4_aylik_kullanim"`
	AktifKampanya  *Kampanya    `json:"aktif_kampanya,omitempty"`
	GecisPaketleri []Paket      `json:"gecis_yapilabilecek_paketler,omitempty"`
	FaturaOdendiMi *bool        `json:"fatura_odendi_mi,omitempty"`
	SonOdemeTarihi string       `json:"son_odeme_tarihi,omitempty"`
}

type Paket struct {
	Isim       string   `json:"paketİsmi"`
	Fiyat      float64  `json:"fiyatı"`
	Dakika     int      `json:"dakika"`
	SMS        int      `json:"sms"`
	DataGB     float64  `json:"data_gb"`
	Gecerlilik string   `json:"gecerlilikTarihi"`
	Artilar    []string `json:"artiları"`
}

// DataLimitMB resolves the data_gb field, which holds MB in most records
// (5000 means 5 GB) but plain GB in a few older ones. Values >= 1024 are
// taken as MB, anything smaller as GB.
func (p Paket) DataLimitMB() int {
	if p.DataGB >= 1024 {
		return int(p.DataGB)
	}
	return int(p.DataGB * 1024)
}

func (p *Paket) UnmarshalJSON(b []byte) error {
	type alias Paket
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*p = Paket(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if p.Fiyat == 0 {
		p.Fiyat = firstNumber(raw, "fiyatı", "fiyati", "fiyat")
	}
	if p.Isim == "" {
		p.Isim = firstString(raw, "paketİsmi", "paketIsmi", "paket_ismi")
	}
	return nil
}

type KalanHaklar struct {
	KalanDakika   int     `json:"kalanDakika"`
	KalanSMS      int     `json:"kalanSms"`
	KalanInternet float64 `json:"kalanİnternet"` // GB
}

func (k *KalanHaklar) UnmarshalJSON(b []byte) error {
	type alias KalanHaklar
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*k = KalanHaklar(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if k.KalanInternet == 0 {
		k.KalanInternet = firstNumber(raw, "kalanİnternet", "kalanInternet")
	}
	return nil
}

type AyKullanim struct {
	Ay             string  `json:"ay"`
	KonusmaDakika  int     `json:"konusma_dakika"`
	SMS            int     `json:"sms"`
	DataMB         int     `json:"data_mb"`
	YurtDisiDakika int     `json:"yurt_dişi_dakika"`
	OdemeTL        float64 `json:"odeme_tl"`
	OdendiMi       bool    `json:"odendi_mi"`
}

func (m *AyKullanim) UnmarshalJSON(b []byte) error {
	type alias AyKullanim
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*m = AyKullanim(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if m.YurtDisiDakika == 0 {
		m.YurtDisiDakika = int(firstNumber(raw, "yurt_dişi_dakika", "yurt_disi_dakika"))
	}
	return nil
}

type Kampanya struct {
	Isim           string  `json:"paketİsmi"`
	Gecerlilik     string  `json:"gecerlilikTarihi"`
	IndirimYuzdesi float64 `json:"indirimYüzdesi"`
}

func (k *Kampanya) UnmarshalJSON(b []byte) error {
	type alias Kampanya
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*k = Kampanya(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if k.IndirimYuzdesi == 0 {
		k.IndirimYuzdesi = firstNumber(raw, "indirimYüzdesi", "indirimYuzdesi")
	}
	return nil
}

func firstNumber(raw map[string]json.RawMessage, keys ...string) float64 {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			return f
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func firstString(raw map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}
