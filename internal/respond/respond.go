// Package respond holds the canned response generators, one per category.
// Each is a pure function over a customer record; the dialogue controller
// only dispatches and speaks the result.
package respond

import (
	"fmt"
	"strings"

	"santral/internal/customer"
)

// BillingDispute analyzes the most recent bill against package limits and
// names the likely cause of an overcharge. Overage reasons win over the
// double-billing check; double billing is flagged when the paid amount is at
// least twice the package price, with 5 TL tolerance.
func BillingDispute(rec *customer.Record) string {
	paket := rec.Paket
	if len(rec.Son4AyKullanim) == 0 || (paket.Isim == "" && paket.Fiyat == 0) {
		return "Kullanım ve paket bilgileri eksik."
	}

	sonAy := rec.Son4AyKullanim[len(rec.Son4AyKullanim)-1]
	ay := sonAy.Ay
	if ay == "" {
		ay = "Bilinmiyor"
	}
	dataLimitMB := paket.DataLimitMB()

	var sebepler []string
	if paket.Dakika > 0 && sonAy.KonusmaDakika > paket.Dakika {
		sebepler = append(sebepler, fmt.Sprintf("dakika aşımı (+%d dk)", sonAy.KonusmaDakika-paket.Dakika))
	}
	if paket.SMS > 0 && sonAy.SMS > paket.SMS {
		sebepler = append(sebepler, fmt.Sprintf("SMS aşımı (+%d SMS)", sonAy.SMS-paket.SMS))
	}
	if dataLimitMB > 0 && sonAy.DataMB > dataLimitMB {
		sebepler = append(sebepler, fmt.Sprintf("internet aşımı (+%d MB)", sonAy.DataMB-dataLimitMB))
	}
	if sonAy.YurtDisiDakika > 0 {
		sebepler = append(sebepler, fmt.Sprintf("yurt dışı arama (%d dk)", sonAy.YurtDisiDakika))
	}

	fark := sonAy.OdemeTL - paket.Fiyat

	var analiz []string
	switch {
	case fark > 0.01 && len(sebepler) > 0:
		analiz = append(analiz, fmt.Sprintf(
			"%s ayında %s nedeniyle yaklaşık +%.2f TL fazla fatura.",
			ay, strings.Join(sebepler, ", "), fark))
	case fark > 0.01 && paket.Fiyat > 0 && sonAy.OdemeTL >= 2*paket.Fiyat-5:
		analiz = append(analiz, fmt.Sprintf(
			"%s ayında çift fatura kesimi tespit edildi. Ödenen tutar (%.2f TL) ödenecek tutarın (%g TL) 2 katıdır. Aynı dönemde iki kez faturalandırma yapılmış.",
			ay, sonAy.OdemeTL, paket.Fiyat))
	case fark > 0.01:
		var muhtemel []string
		if rec.AktifKampanya != nil && rec.AktifKampanya.IndirimYuzdesi > 0 {
			muhtemel = append(muhtemel, "kampanya/indirim değişikliği")
		}
		if paket.Fiyat > 0 && sonAy.OdemeTL >= 1.8*paket.Fiyat {
			muhtemel = append(muhtemel, "muhtemel çifte kesim")
		}
		muhtemel = append(muhtemel, "ek servis veya mobil ödeme")
		analiz = append(analiz, fmt.Sprintf(
			"%s ayında paket aşımı görünmüyor; yaklaşık +%.2f TL ek ücret. Muhtemel sebep: %s.",
			ay, fark, strings.Join(muhtemel, ", ")))
	case len(sebepler) > 0:
		analiz = append(analiz, fmt.Sprintf(
			"%s ayında %s tespit edildi; fatura tutarında artış görünmüyor.",
			ay, strings.Join(sebepler, ", ")))
	}

	if len(analiz) == 0 {
		analiz = append(analiz, fmt.Sprintf("%s ayında faturanız normal limitler içinde.", ay))
	}
	return "Fatura analiz sonucu:\n" + strings.Join(analiz, "\n")
}

// AllRemaining reports the active campaign and every remaining allowance.
func AllRemaining(rec *customer.Record) string {
	var kampanyaText string
	if k := rec.AktifKampanya; k != nil && k.Isim != "" {
		kampanyaText = fmt.Sprintf("%s kampanyası, %s tarihine kadar geçerlidir.", k.Isim, k.Gecerlilik)
	} else {
		kampanyaText = "Aktif kampanya bulunmamaktadır."
	}

	kalan := rec.KalanHaklar
	kalanText := fmt.Sprintf("%d dakika, %d SMS, %g GB internet hakkınız kaldı.",
		kalan.KalanDakika, kalan.KalanSMS, kalan.KalanInternet)

	return fmt.Sprintf("Aktif kampanya: %s\nKalan kullanım haklarınız: %s", kampanyaText, kalanText)
}

// HakTipi selects which single allowance to report.
type HakTipi string

const (
	HakSMS      HakTipi = "sms"
	HakDakika   HakTipi = "dakika"
	HakInternet HakTipi = "internet"
)

// SingleRemaining reports one allowance in the fixed sentence format.
func SingleRemaining(rec *customer.Record, tip HakTipi) string {
	paketIsim := rec.Paket.Isim
	if paketIsim == "" {
		paketIsim = "paket adı bulunamadı"
	}
	kalan := rec.KalanHaklar
	switch tip {
	case HakSMS:
		return fmt.Sprintf("%s paketinizden kalan SMS hakkınız: %d SMS'dir.", paketIsim, kalan.KalanSMS)
	case HakDakika:
		return fmt.Sprintf("%s paketinizden kalan dakika hakkınız: %d dakikadır.", paketIsim, kalan.KalanDakika)
	case HakInternet:
		return fmt.Sprintf("%s paketinizden kalan internet kullanımınız: %g GB'dir.", paketIsim, kalan.KalanInternet)
	default:
		return "Kalan hak konusundaki talebiniz anlaşılamadı. Lütfen SMS, dakika veya internet hakkınızdan hangisini öğrenmek istediğinizi belirtiniz."
	}
}

// LastMonths summarizes usage over the last n months (1, 2 or 3).
func LastMonths(rec *customer.Record, n int) string {
	aylar := rec.Son4AyKullanim
	if len(aylar) < n || n < 1 {
		switch n {
		case 2:
			return "Son iki ay kullanım verisi bulunamadı."
		case 3:
			return "Son 3 ay kullanım verisi bulunamadı."
		default:
			return "Son ay kullanım verisi bulunamadı."
		}
	}

	if n == 1 {
		sonAy := aylar[len(aylar)-1]
		return fmt.Sprintf("Son ay (%s) kullanımınız: %d dakika, %d SMS, %.2f GB internet.",
			ayAdi(sonAy), sonAy.KonusmaDakika, sonAy.SMS, float64(sonAy.DataMB)/1024)
	}

	baslik := "Son iki ay kullanımınız:\n"
	if n == 3 {
		baslik = "Son 3 ay kullanımınız:\n"
	}
	var b strings.Builder
	b.WriteString(baslik)
	for _, ay := range aylar[len(aylar)-n:] {
		fmt.Fprintf(&b, "- %s: %d dakika, %d SMS, %.2f GB internet.\n",
			ayAdi(ay), ay.KonusmaDakika, ay.SMS, float64(ay.DataMB)/1024)
	}
	return b.String()
}

func ayAdi(ay customer.AyKullanim) string {
	if ay.Ay == "" {
		return "Bilinmiyor"
	}
	return ay.Ay
}

// DebtPayment reports the latest bill's payment state.
func DebtPayment(rec *customer.Record) string {
	durum := "Bilinmiyor"
	if rec.FaturaOdendiMi != nil {
		if *rec.FaturaOdendiMi {
			durum = "Ödendi"
		} else {
			durum = "Ödenmedi"
		}
	}
	return fmt.Sprintf("Son ödeme tarihi: %s olan faturanızın durumu %s", rec.SonOdemeTarihi, durum)
}

// Cancellation acknowledges a cancellation request.
func Cancellation(_ *customer.Record) string {
	return "İptal talebiniz alınmıştır, işleminiz en kısa sürede gerçekleştirilecektir."
}

// TechnicalFault acknowledges a fault ticket.
func TechnicalFault(_ *customer.Record) string {
	return "Teknik arıza kaydınız oluşturuldu. En kısa sürede dönüş sağlanacaktır."
}

// NewPackages lists the packages the customer may switch to.
func NewPackages(rec *customer.Record) string {
	if len(rec.GecisPaketleri) == 0 {
		return "Geçiş yapılabilecek paket bulunamadı."
	}
	var satirlar []string
	for _, p := range rec.GecisPaketleri {
		isim := p.Isim
		if isim == "" {
			isim = "İsimsiz Paket"
		}
		artilar := "Ek özellik yok"
		if len(p.Artilar) > 0 {
			artilar = strings.Join(p.Artilar, ", ")
		}
		satirlar = append(satirlar, fmt.Sprintf("- %s (%g TL) — Artıları: %s", isim, p.Fiyat, artilar))
	}
	return "Geçiş yapabileceğiniz paketler:\n" + strings.Join(satirlar, "\n")
}

// SIMPin reveals the SIM PIN only when the spoken national-ID fragment
// matches the stored last-two digits; otherwise the request is refused and
// the call goes on.
func SIMPin(rec *customer.Record, spoken string) string {
	want := digits(rec.TC)
	if len(want) > 2 {
		want = want[len(want)-2:]
	}
	if want != "" && digits(spoken) == want {
		return fmt.Sprintf("Sim kart şifreniz: %s", rec.SimSifre)
	}
	return "TC kimlik numarası doğrulanamadı. Güvenlik nedeniyle şifre verilemiyor."
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
