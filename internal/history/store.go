package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

type document struct {
	Gorusmeler             []*Session            `json:"gorusmeler"`
	MusteriGecmis          map[string]*Aggregate `json:"musteri_gecmis"`
	KategoriIstatistikleri Stats                 `json:"kategori_istatistikleri"`
}

// Store owns the history document exclusively. All mutations run under one
// mutex and rewrite the file atomically, so a concurrent reader (the stats
// poller) can never observe or cause a lost update.
type Store struct {
	path string
	now  func() time.Time

	mu  sync.Mutex
	doc document
}

type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.doc = document{MusteriGecmis: make(map[string]*Aggregate)}

	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(content) == 0 {
		return nil
	}
	if err := json.Unmarshal(content, &s.doc); err != nil {
		return fmt.Errorf("decode history document: %w", err)
	}
	if s.doc.MusteriGecmis == nil {
		s.doc.MusteriGecmis = make(map[string]*Aggregate)
	}
	return nil
}

// save rewrites the whole document. Lock held by caller.
func (s *Store) save() error {
	s.doc.KategoriIstatistikleri = s.computeStats()
	b, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(s.path, bytes.NewReader(b))
}

// StartCall opens a session for the given caller and updates the customer
// aggregate, creating it on first contact.
func (s *Store) StartCall(telefon, musteriAdi string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session := &Session{
		ID:              uuid.NewString(),
		Telefon:         telefon,
		MusteriAdi:      musteriAdi,
		Baslangic:       now,
		Durum:           DurumAktif,
		CozulmeDurumu:   CozulmeDevamEdiyor,
		Mesajlar:        []Message{},
		KategoriGecmisi: []string{},
		Oncelik:         "normal",
		Etiketler:       []string{},
	}
	s.doc.Gorusmeler = append(s.doc.Gorusmeler, session)

	agg, ok := s.doc.MusteriGecmis[telefon]
	if !ok {
		agg = &Aggregate{
			MusteriAdi:  musteriAdi,
			IlkGorusme:  now,
			Kategoriler: make(map[string]int),
		}
		s.doc.MusteriGecmis[telefon] = agg
	}
	agg.ToplamGorusme++
	agg.SonGorusme = now

	if err := s.save(); err != nil {
		return "", err
	}
	return session.ID, nil
}

// EndCall terminates a session. End time and duration are set exactly once;
// ending an already-terminated session is a no-op.
func (s *Store) EndCall(id, durum, cozulme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.find(id)
	if session == nil {
		return fmt.Errorf("session not found: %s", id)
	}
	if session.Bitis != nil {
		return nil
	}

	now := s.now()
	session.Bitis = &now
	session.Sure = roundMinutes(now.Sub(session.Baslangic))
	session.Durum = durum
	session.CozulmeDurumu = cozulme

	if agg, ok := s.doc.MusteriGecmis[session.Telefon]; ok {
		agg.ToplamSure += session.Sure
		if session.Kategori != "" {
			agg.Kategoriler[session.Kategori]++
		}
	}
	return s.save()
}

// AppendMessage adds one turn to a session and records its category in the
// session's category history when new.
func (s *Store) AppendMessage(id, gonderen, mesaj, kategori string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.find(id)
	if session == nil {
		return fmt.Errorf("session not found: %s", id)
	}
	session.Mesajlar = append(session.Mesajlar, Message{
		Zaman:    s.now(),
		Gonderen: gonderen,
		Mesaj:    mesaj,
		Kategori: kategori,
	})
	if kategori != "" && !contains(session.KategoriGecmisi, kategori) {
		session.KategoriGecmisi = append(session.KategoriGecmisi, kategori)
	}
	return s.save()
}

func (s *Store) UpdateCategory(id, kategori string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.find(id)
	if session == nil {
		return fmt.Errorf("session not found: %s", id)
	}
	session.Kategori = kategori
	if !contains(session.KategoriGecmisi, kategori) {
		session.KategoriGecmisi = append(session.KategoriGecmisi, kategori)
	}
	return s.save()
}

// SessionUpdate carries the operator-editable session fields. Nil fields
// are left untouched.
type SessionUpdate struct {
	Oncelik       *string
	Etiketler     []string
	Notlar        *string
	CozulmeDurumu *string
}

// UpdateSession applies the set fields and persists. Reports whether the
// session was found.
func (s *Store) UpdateSession(id string, upd SessionUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.find(id)
	if session == nil {
		return false, nil
	}
	if upd.Oncelik != nil {
		session.Oncelik = *upd.Oncelik
	}
	if upd.Etiketler != nil {
		session.Etiketler = append([]string(nil), upd.Etiketler...)
	}
	if upd.Notlar != nil {
		session.Notlar = *upd.Notlar
	}
	if upd.CozulmeDurumu != nil {
		session.CozulmeDurumu = *upd.CozulmeDurumu
	}
	return true, s.save()
}

// SessionCategory reports the current category of a session, empty when the
// session is unknown or not yet classified.
func (s *Store) SessionCategory(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session := s.find(id); session != nil {
		return session.Kategori
	}
	return ""
}

// CustomerSessions returns the caller's sessions, newest first.
func (s *Store) CustomerSessions(telefon string, limit int) []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Session
	for _, g := range s.doc.Gorusmeler {
		if g.Telefon == telefon {
			out = append(out, cloneSession(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Baslangic.After(out[j].Baslangic) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RecentSessions returns the latest sessions across all customers.
func (s *Store) RecentSessions(limit int) []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Session, 0, len(s.doc.Gorusmeler))
	for _, g := range s.doc.Gorusmeler {
		out = append(out, cloneSession(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Baslangic.After(out[j].Baslangic) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Search matches term case-insensitively against customer name, phone,
// category and message text.
func (s *Store) Search(term string) []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	term = strings.ToLower(term)
	var out []Session
	for _, g := range s.doc.Gorusmeler {
		if s.matches(g, term) {
			out = append(out, cloneSession(g))
		}
	}
	return out
}

func (s *Store) matches(g *Session, term string) bool {
	if strings.Contains(strings.ToLower(g.MusteriAdi), term) ||
		strings.Contains(g.Telefon, term) ||
		strings.Contains(strings.ToLower(g.Kategori), term) {
		return true
	}
	for _, m := range g.Mesajlar {
		if strings.Contains(strings.ToLower(m.Mesaj), term) {
			return true
		}
	}
	return false
}

// Delete removes a session and its messages wholesale.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, g := range s.doc.Gorusmeler {
		if g.ID == id {
			s.doc.Gorusmeler = append(s.doc.Gorusmeler[:i], s.doc.Gorusmeler[i+1:]...)
			return true, s.save()
		}
	}
	return false, nil
}

// CustomerAggregate returns the rollup for a phone number, nil when unknown.
func (s *Store) CustomerAggregate(telefon string) *Aggregate {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, ok := s.doc.MusteriGecmis[telefon]
	if !ok {
		return nil
	}
	copied := *agg
	copied.Kategoriler = make(map[string]int, len(agg.Kategoriler))
	for k, v := range agg.Kategoriler {
		copied.Kategoriler[k] = v
	}
	return &copied
}

// CustomerAnalysis computes the per-customer report. The zero Analysis and
// ok=false mean the number has no sessions at all.
func (s *Store) CustomerAnalysis(telefon string) (Analysis, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sessions []*Session
	for _, g := range s.doc.Gorusmeler {
		if g.Telefon == telefon {
			sessions = append(sessions, g)
		}
	}
	if len(sessions) == 0 {
		return Analysis{}, false
	}

	a := Analysis{
		ToplamGorusme:    len(sessions),
		IlkGorusme:       sessions[0].Baslangic,
		SonGorusme:       sessions[0].Baslangic,
		KategoriSayilari: make(map[string]int),
		KategoriSureleri: make(map[string]float64),
	}
	now := s.now()
	for _, g := range sessions {
		if g.Baslangic.Before(a.IlkGorusme) {
			a.IlkGorusme = g.Baslangic
		}
		if g.Baslangic.After(a.SonGorusme) {
			a.SonGorusme = g.Baslangic
		}
		a.ToplamGorusmeSuresi += g.Sure
		kategori := g.Kategori
		if kategori == "" {
			kategori = "Bilinmiyor"
		}
		a.KategoriSayilari[kategori]++
		a.KategoriSureleri[kategori] += g.Sure
		if now.Sub(g.Baslangic) <= 30*24*time.Hour {
			a.Son30GunGorusme++
		}
	}
	a.OrtalamaGorusmeSuresi = a.ToplamGorusmeSuresi / float64(len(sessions))
	a.MusteriYasiGun = int(now.Sub(a.IlkGorusme).Hours() / 24)

	best, bestN := "Yok", 0
	for k, n := range a.KategoriSayilari {
		if n > bestN {
			best, bestN = k, n
		}
	}
	a.EnCokKategori = best
	return a, true
}

// Stats recomputes and returns the summary block.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computeStats()
}

func (s *Store) computeStats() Stats {
	st := Stats{
		KategoriSayilari: make(map[string]int),
		KategoriSureleri: make(map[string]float64),
	}
	for _, g := range s.doc.Gorusmeler {
		kategori := g.Kategori
		if kategori == "" {
			kategori = "Bilinmiyor"
		}
		st.KategoriSayilari[kategori]++
		st.KategoriSureleri[kategori] += g.Sure
		st.ToplamGorusme++
		switch g.Durum {
		case DurumAktif:
			st.AktifGorusme++
		case DurumTamamlandi:
			st.TamamlananGorusme++
		}
	}
	return st
}

// Daily summarizes sessions started today.
func (s *Store) Daily() DailyStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var d DailyStats
	y, m, day := s.now().Date()
	for _, g := range s.doc.Gorusmeler {
		gy, gm, gd := g.Baslangic.Date()
		if gy != y || gm != m || gd != day {
			continue
		}
		d.BugunGorusme++
		d.BugunSure += g.Sure
		if g.CozulmeDurumu == CozulmeCozuldu {
			d.BugunCozulme++
		}
	}
	return d
}

func (s *Store) find(id string) *Session {
	for _, g := range s.doc.Gorusmeler {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func cloneSession(g *Session) Session {
	out := *g
	out.Mesajlar = append([]Message(nil), g.Mesajlar...)
	out.KategoriGecmisi = append([]string(nil), g.KategoriGecmisi...)
	out.Etiketler = append([]string(nil), g.Etiketler...)
	if g.Bitis != nil {
		bitis := *g.Bitis
		out.Bitis = &bitis
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func roundMinutes(d time.Duration) float64 {
	return math.Round(d.Minutes()*100) / 100
}
