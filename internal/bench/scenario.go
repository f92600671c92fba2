// Package bench generates and executes the 100-scenario acceptance run:
// scripted calls at four difficulty levels pushed through the real call
// controller, with KPIs collected in the performance tracker.
package bench

import (
	"fmt"
	"math/rand"

	"santral/internal/customer"
)

type Scenario struct {
	Type       string   `json:"type"` // package_change, billing_inquiry, technical_support, context_switch
	Difficulty string   `json:"difficulty"`
	State      string   `json:"customer_state,omitempty"`
	Utterances []string `json:"utterances"`
}

// GenerateScenarios builds the shuffled 100-scenario set: 40 package
// changes, 30 billing inquiries, 20 technical support calls and 10
// context switches.
func GenerateScenarios(rng *rand.Rand) []Scenario {
	var out []Scenario

	add := func(n int, s Scenario) {
		for i := 0; i < n; i++ {
			out = append(out, s)
		}
	}

	add(10, Scenario{Type: "package_change", Difficulty: "easy", State: "normal",
		Utterances: []string{"paketimi değiştirmek istiyorum, hangi kampanyalar var"}})
	add(10, Scenario{Type: "package_change", Difficulty: "medium", State: "delayed_payment",
		Utterances: []string{"daha uygun fiyatlı bir pakete geçmek istiyorum", "kalan haklarımı da öğrenmek istiyorum"}})
	add(10, Scenario{Type: "package_change", Difficulty: "hard", State: "contract_locked",
		Utterances: []string{"yeni paket seçeneklerini görmek istiyorum", "tüm kalan haklarım ne kadar"}})
	add(10, Scenario{Type: "package_change", Difficulty: "expert", State: "multiple_issues",
		Utterances: []string{"önce borç durumumu öğrenmek istiyorum", "şimdi yeni paketleri göster", "kalan internetim ne kadar"}})

	add(9, Scenario{Type: "billing_inquiry", Difficulty: "easy", State: "paid",
		Utterances: []string{"borç durumumu öğrenmek istiyorum"}})
	add(7, Scenario{Type: "billing_inquiry", Difficulty: "medium", State: "overdue",
		Utterances: []string{"fatura borcum var mı", "kalan dakikam ne kadar"}})
	add(7, Scenario{Type: "billing_inquiry", Difficulty: "hard", State: "disputed",
		Utterances: []string{"faturam yanlış, itiraz etmek istiyorum", "borç durumum nedir"}})
	add(7, Scenario{Type: "billing_inquiry", Difficulty: "expert", State: "fraud_suspicion",
		Utterances: []string{"bu fatura çok yüksek, itiraz ediyorum", "hattımı iptal etmek istiyorum", "borcum ne kadar"}})

	add(5, Scenario{Type: "technical_support", Difficulty: "easy",
		Utterances: []string{"internetim çok yavaş, arıza var"}})
	add(5, Scenario{Type: "technical_support", Difficulty: "medium",
		Utterances: []string{"internet bağlantım yok, arıza bildirmek istiyorum", "kalan internetim bitmiş olabilir mi"}})
	add(5, Scenario{Type: "technical_support", Difficulty: "hard",
		Utterances: []string{"modem arızası yaşıyorum", "sim kart şifremi de unuttum"}})
	add(5, Scenario{Type: "technical_support", Difficulty: "expert",
		Utterances: []string{"karmaşık bir ağ arızası var", "fatura itirazım da olacak", "son ay kullanımım ne kadar"}})

	add(4, Scenario{Type: "context_switch", Difficulty: "medium",
		Utterances: []string{"paketimi değiştirmek istiyorum", "önce borç durumumu öğreneyim"}})
	add(3, Scenario{Type: "context_switch", Difficulty: "hard",
		Utterances: []string{"faturama itiraz edeceğim", "aslında yeni paketlere de bakalım"}})
	add(3, Scenario{Type: "context_switch", Difficulty: "expert",
		Utterances: []string{"internet arızam var", "fatura borcumu da öğreneyim", "yeni kampanyalar neler"}})

	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

var (
	benchNames    = []string{"Ahmet", "Ayşe", "Mehmet", "Fatma", "Ali", "Zeynep"}
	benchSurnames = []string{"Yılmaz", "Kaya", "Demir", "Çelik", "Şahin", "Yıldız"}
)

// generateCustomer builds a synthetic subscriber the responders can answer
// questions about.
func generateCustomer(rng *rand.Rand, sc Scenario) *customer.Record {
	odendi := sc.State != "delayed_payment" && sc.State != "overdue" &&
		sc.State != "multiple_issues" && sc.State != "fraud_suspicion"

	phone := fmt.Sprintf("05%09d", rng.Int63n(1_000_000_000))
	return &customer.Record{
		Numara:   phone,
		Ad:       benchNames[rng.Intn(len(benchNames))] + " " + benchSurnames[rng.Intn(len(benchSurnames))],
		TC:       fmt.Sprintf("%011d", rng.Int63n(100_000_000_000)),
		SimSifre: fmt.Sprintf("%04d", rng.Intn(10_000)),
		Paket: customer.Paket{
			Isim:   "MegaPaket 100",
			Fiyat:  200,
			Dakika: 1000,
			SMS:    500,
			DataGB: 10240,
		},
		KalanHaklar: customer.KalanHaklar{
			KalanDakika:   rng.Intn(1000),
			KalanSMS:      rng.Intn(500),
			KalanInternet: rng.Float64() * 10,
		},
		Son4AyKullanim: []customer.AyKullanim{
			{Ay: "Nisan", KonusmaDakika: 800, SMS: 300, DataMB: 9000, OdemeTL: 200, OdendiMi: true},
			{Ay: "Mayıs", KonusmaDakika: 850, SMS: 320, DataMB: 9500, OdemeTL: 200, OdendiMi: true},
			{Ay: "Haziran", KonusmaDakika: 900, SMS: 340, DataMB: 9800, OdemeTL: 200, OdendiMi: odendi},
		},
		GecisPaketleri: []customer.Paket{
			{Isim: "Ekonomik Paket", Fiyat: 120, Dakika: 500, SMS: 250, DataGB: 5120,
				Artilar: []string{"Düşük fiyat", "Taahhütsüz"}},
			{Isim: "MegaPaket 200", Fiyat: 300, Dakika: 2000, SMS: 1000, DataGB: 20480,
				Artilar: []string{"Bol internet", "Yurt dışı dakika"}},
		},
		FaturaOdendiMi: &odendi,
		SonOdemeTarihi: "2025-07-26",
	}
}
