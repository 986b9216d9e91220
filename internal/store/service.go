package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zapinvoice/zapinvoice/internal/models"
)

// Service is the persistence facade over the two scopes. It owns the JSON
// encoding and the storage keys and holds no entity state of its own.
//
// Reads fail soft: missing, unreadable or malformed data comes back as an
// empty list or absent value, logged at debug level, never as an error the
// caller has to handle.
type Service struct {
	durable KV
	session KV
	log     *logrus.Logger
}

func NewService(durable, session KV, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{durable: durable, session: session, log: log}
}

func (s *Service) readJSON(ctx context.Context, kv KV, key string, dest any) bool {
	raw, found, err := kv.Get(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Debug("store read failed")
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.log.WithError(err).WithField("key", key).Debug("store data malformed")
		return false
	}
	return true
}

func (s *Service) writeJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(raw))
}

// ---- Company profiles (durable collection, upsert by id) ----

func (s *Service) ListCompanyProfiles(ctx context.Context) []models.CompanyProfile {
	var profiles []models.CompanyProfile
	if !s.readJSON(ctx, s.durable, KeyCompanyProfiles, &profiles) {
		return []models.CompanyProfile{}
	}
	return profiles
}

// SaveCompanyProfile upserts by id; a profile without an id gets one before
// insert. The stored profile (with its id) is returned.
func (s *Service) SaveCompanyProfile(ctx context.Context, profile models.CompanyProfile) (models.CompanyProfile, error) {
	profiles := s.ListCompanyProfiles(ctx)
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	replaced := false
	for i := range profiles {
		if profiles[i].ID == profile.ID {
			profiles[i] = profile
			replaced = true
			break
		}
	}
	if !replaced {
		profiles = append(profiles, profile)
	}
	if err := s.writeJSON(ctx, s.durable, KeyCompanyProfiles, profiles); err != nil {
		return profile, err
	}
	return profile, nil
}

func (s *Service) DeleteCompanyProfile(ctx context.Context, id string) error {
	profiles := s.ListCompanyProfiles(ctx)
	kept := profiles[:0]
	for _, p := range profiles {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return s.writeJSON(ctx, s.durable, KeyCompanyProfiles, kept)
}

// ---- Invoice templates (durable collection, upsert by id) ----

func (s *Service) ListInvoiceTemplates(ctx context.Context) []models.InvoiceTemplate {
	var templates []models.InvoiceTemplate
	if !s.readJSON(ctx, s.durable, KeyInvoiceTemplates, &templates) {
		return []models.InvoiceTemplate{}
	}
	return templates
}

func (s *Service) SaveInvoiceTemplate(ctx context.Context, tpl models.InvoiceTemplate) (models.InvoiceTemplate, error) {
	templates := s.ListInvoiceTemplates(ctx)
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	replaced := false
	for i := range templates {
		if templates[i].ID == tpl.ID {
			templates[i] = tpl
			replaced = true
			break
		}
	}
	if !replaced {
		templates = append(templates, tpl)
	}
	if err := s.writeJSON(ctx, s.durable, KeyInvoiceTemplates, templates); err != nil {
		return tpl, err
	}
	return tpl, nil
}

func (s *Service) DeleteInvoiceTemplate(ctx context.Context, id string) error {
	templates := s.ListInvoiceTemplates(ctx)
	kept := templates[:0]
	for _, t := range templates {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return s.writeJSON(ctx, s.durable, KeyInvoiceTemplates, kept)
}

// ---- Current invoice (durable single slot) ----

func (s *Service) GetCurrentInvoice(ctx context.Context) *models.Invoice {
	var inv models.Invoice
	if !s.readJSON(ctx, s.durable, KeyCurrentInvoice, &inv) {
		return nil
	}
	return &inv
}

func (s *Service) SaveCurrentInvoice(ctx context.Context, inv *models.Invoice) error {
	return s.writeJSON(ctx, s.durable, KeyCurrentInvoice, inv)
}

func (s *Service) ClearCurrentInvoice(ctx context.Context) error {
	return s.durable.Delete(ctx, KeyCurrentInvoice)
}

// ---- Draft invoice (session single slot) ----

func (s *Service) GetDraftInvoice(ctx context.Context) *models.Invoice {
	var inv models.Invoice
	if !s.readJSON(ctx, s.session, KeyDraftInvoice, &inv) {
		return nil
	}
	return &inv
}

func (s *Service) SaveDraftInvoice(ctx context.Context, inv *models.Invoice) error {
	return s.writeJSON(ctx, s.session, KeyDraftInvoice, inv)
}

func (s *Service) ClearDraftInvoice(ctx context.Context) error {
	return s.session.Delete(ctx, KeyDraftInvoice)
}

// ---- Invoice numbering ----

type invoiceSequence struct {
	Year int `json:"year"`
	Seq  int `json:"seq"`
}

// NextInvoiceNumber advances the per-year sequence in the durable scope and
// returns a number of the form INV-YYYY-NNNN. An unreadable sequence slot
// restarts at 1; uniqueness is per device, which is all a local-first tool
// needs.
func (s *Service) NextInvoiceNumber(ctx context.Context) string {
	year := time.Now().Year()
	var seq invoiceSequence
	s.readJSON(ctx, s.durable, KeyInvoiceSequence, &seq)
	if seq.Year != year {
		seq = invoiceSequence{Year: year}
	}
	seq.Seq++
	if err := s.writeJSON(ctx, s.durable, KeyInvoiceSequence, seq); err != nil {
		s.log.WithError(err).Debug("invoice sequence write failed")
	}
	return fmt.Sprintf("INV-%d-%04d", year, seq.Seq)
}
