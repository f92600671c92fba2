package history

import "time"

// Message is one turn inside a session. Append-only.
type Message struct {
	Zaman    time.Time `json:"zaman"`
	Gonderen string    `json:"gonderen"` // Müşteri, Temsilci, Sistem
	Mesaj    string    `json:"mesaj"`
	Kategori string    `json:"kategori,omitempty"`
}

// Session is the record of one call from identification to termination.
type Session struct {
	ID              string     `json:"id"`
	Telefon         string     `json:"telefon"`
	MusteriAdi      string     `json:"musteri_adi"`
	Baslangic       time.Time  `json:"baslangic_zamani"`
	Bitis           *time.Time `json:"bitis_zamani,omitempty"`
	Sure            float64    `json:"sure"` // minutes, 2 decimals, set at termination
	Durum           string     `json:"durum"`
	CozulmeDurumu   string     `json:"cozulme_durumu"`
	Kategori        string     `json:"kategori,omitempty"`
	Mesajlar        []Message  `json:"mesajlar"`
	KategoriGecmisi []string   `json:"kategori_gecmisi"`
	Oncelik         string     `json:"oncelik"`
	Etiketler       []string   `json:"etiketler"`
	Notlar          string     `json:"notlar"`
}

// Session states.
const (
	DurumAktif      = "aktif"
	DurumTamamlandi = "tamamlandi"

	CozulmeDevamEdiyor = "devam_ediyor"
	CozulmeCozuldu     = "cozuldu"
	CozulmeCozulemedi  = "cozulemedi"
)

// Aggregate is the per-phone-number rollup kept alongside the sessions.
type Aggregate struct {
	MusteriAdi    string         `json:"musteri_adi"`
	IlkGorusme    time.Time      `json:"ilk_gorusme"`
	SonGorusme    time.Time      `json:"son_gorusme"`
	ToplamGorusme int            `json:"toplam_gorusme"`
	ToplamSure    float64        `json:"toplam_sure"`
	Kategoriler   map[string]int `json:"kategoriler"`
}

// Stats is the recomputed-on-demand summary block of the history document.
type Stats struct {
	KategoriSayilari  map[string]int     `json:"kategori_sayilari"`
	KategoriSureleri  map[string]float64 `json:"kategori_sureleri"`
	ToplamGorusme     int                `json:"toplam_gorusme"`
	AktifGorusme      int                `json:"aktif_gorusme"`
	TamamlananGorusme int                `json:"tamamlanan_gorusme"`
}

// Analysis is the detailed per-customer report.
type Analysis struct {
	ToplamGorusme         int                `json:"toplam_gorusme"`
	IlkGorusme            time.Time          `json:"ilk_gorusme"`
	SonGorusme            time.Time          `json:"son_gorusme"`
	MusteriYasiGun        int                `json:"musteri_yasi_gun"`
	OrtalamaGorusmeSuresi float64            `json:"ortalama_gorusme_suresi"`
	ToplamGorusmeSuresi   float64            `json:"toplam_gorusme_suresi"`
	KategoriSayilari      map[string]int     `json:"kategori_sayilari"`
	KategoriSureleri      map[string]float64 `json:"kategori_sureleri"`
	EnCokKategori         string             `json:"en_cok_gorusulen_kategori"`
	Son30GunGorusme       int                `json:"son_30_gun_gorusme"`
}

// DailyStats summarizes today's traffic.
type DailyStats struct {
	BugunGorusme int     `json:"bugun_gorusme"`
	BugunSure    float64 `json:"bugun_sure"`
	BugunCozulme int     `json:"bugun_cozulme"`
}
