package customer_test

import (
	"os"
	"path/filepath"
	"testing"

	"santral/internal/customer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_AllInputFormats(t *testing.T) {
	want := "05551234567"
	for _, in := range []string{
		"5551234567",
		"05551234567",
		"905551234567",
		"+905551234567",
		"+90 555 123 45 67",
		"0555-123-45-67",
	} {
		assert.Equal(t, want, customer.Normalize(in), "input %q", in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	once := customer.Normalize("+905551234567")
	assert.Equal(t, once, customer.Normalize(once))
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", customer.Normalize(""))
	assert.Equal(t, "", customer.Normalize("abc"))
}

const fixture = `[
  {
    "numara": "+905375944025",
    "ad": "Elif Zeynep Tosun",
    "tc": "46",
    "sim_sifre": "1234",
    "numaraya_tanimli_paket": {
      "paketİsmi": "SuperNet 50",
      "fiyatı": 150,
      "dakika": 1000,
      "sms": 500,
      "data_gb": 5000,
      "gecerlilikTarihi": "2025-12-31"
    },
    "kalan_kullanim_haklari": {
      "kalanDakika": 350,
      "kalanSms": 120,
      "kalanİnternet": 2.5
    },
    "son_4_aylik_kullanim": [
      {"ay": "Mart", "konusma_dakika": 640, "sms": 380, "data_mb": 4100, "odeme_tl": 150},
      {"ay": "Nisan", "konusma_dakika": 700, "sms": 420, "data_mb": 4800, "yurt_disi_dakika": 12, "odeme_tl": 185.5}
    ],
    "aktif_kampanya": {
      "paketİsmi": "Yaz Kampanyası",
      "gecerlilikTarihi": "2025-09-30",
      "indirimYuzdesi": 20
    },
    "gecis_yapilabilecek_paketler": [
      {"paketIsmi": "MegaPaket 100", "fiyat": "200", "artiları": ["limitsiz konuşma", "10 GB mobil"]}
    ],
    "fatura_odendi_mi": true,
    "son_odeme_tarihi": "2025-04-12"
  },
  {
    "numara": "05551234567",
    "ad": "Ahmet Yılmaz",
    "tc": "89",
    "sim_sifre": "5678",
    "numaraya_tanimli_paket": {"paketİsmi": "Ekonomik Paket", "fiyat": 80, "dakika": 500, "sms": 250, "data_gb": 5}
  }
]`

func writeFixture(t *testing.T) *customer.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kullanici_faturalar.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))
	return customer.NewStore(path)
}

func TestFind_MatchesAcrossFormats(t *testing.T) {
	store := writeFixture(t)

	for _, q := range []string{"5375944025", "05375944025", "905375944025", "+905375944025"} {
		rec := store.Find(q)
		require.NotNil(t, rec, "query %q", q)
		assert.Equal(t, "Elif Zeynep Tosun", rec.Ad)
		assert.Equal(t, "SuperNet 50", rec.Paket.Isim)
	}

	// stored form is local 0-prefixed for the second record
	rec := store.Find("+905551234567")
	require.NotNil(t, rec)
	assert.Equal(t, "Ahmet Yılmaz", rec.Ad)
}

func TestFind_Miss(t *testing.T) {
	store := writeFixture(t)
	assert.Nil(t, store.Find("5000000000"))
	assert.Nil(t, store.Find(""))
}

func TestFind_BrokenFileIsAMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bozuk.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	assert.Nil(t, customer.NewStore(path).Find("5375944025"))
	assert.Nil(t, customer.NewStore(filepath.Join(t.TempDir(), "yok.json")).Find("5375944025"))
}

func TestDecode_KeyVariants(t *testing.T) {
	store := writeFixture(t)
	rec := store.Find("5375944025")
	require.NotNil(t, rec)

	// kampanya uses the ASCII indirimYuzdesi spelling
	require.NotNil(t, rec.AktifKampanya)
	assert.Equal(t, 20.0, rec.AktifKampanya.IndirimYuzdesi)

	// usage month uses the ASCII yurt_disi_dakika spelling
	require.Len(t, rec.Son4AyKullanim, 2)
	assert.Equal(t, 12, rec.Son4AyKullanim[1].YurtDisiDakika)

	// switchable package uses fallback name and string price
	require.Len(t, rec.GecisPaketleri, 1)
	assert.Equal(t, "MegaPaket 100", rec.GecisPaketleri[0].Isim)
	assert.Equal(t, 200.0, rec.GecisPaketleri[0].Fiyat)

	ahmet := store.Find("5551234567")
	require.NotNil(t, ahmet)
	assert.Equal(t, 80.0, ahmet.Paket.Fiyat) // bare "fiyat" key
}

func TestDataLimitMB_Heuristic(t *testing.T) {
	// >= 1024 raw values are already MB, smaller ones are GB
	assert.Equal(t, 5000, customer.Paket{DataGB: 5000}.DataLimitMB())
	assert.Equal(t, 10*1024, customer.Paket{DataGB: 10}.DataLimitMB())
	assert.Equal(t, 0, customer.Paket{}.DataLimitMB())
}
