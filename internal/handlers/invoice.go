package handlers

import (
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/zapinvoice/zapinvoice/internal/export"
	"github.com/zapinvoice/zapinvoice/internal/httpx"
	"github.com/zapinvoice/zapinvoice/internal/logo"
	"github.com/zapinvoice/zapinvoice/internal/models"
	"github.com/zapinvoice/zapinvoice/internal/services"
)

// InvoiceHandler drives the state controller over JSON. The controller owns
// a single aggregate and is not concurrency-safe, so every route holds the
// shared mutex for its whole mutation-plus-read.
type InvoiceHandler struct {
	Mu  *sync.Mutex
	Ctl *services.InvoiceController
	Log *logrus.Logger
}

func NewInvoiceHandler(mu *sync.Mutex, ctl *services.InvoiceController, log *logrus.Logger) *InvoiceHandler {
	return &InvoiceHandler{Mu: mu, Ctl: ctl, Log: log}
}

// Get: GET /api/invoice
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	httpx.JSON(w, http.StatusOK, h.Ctl.Invoice())
}

// Update: PATCH /api/invoice
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.InvoicePatch
	if err := httpx.Decode(r, &patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	h.Mu.Lock()
	defer h.Mu.Unlock()
	h.Ctl.UpdateInvoice(r.Context(), patch)
	httpx.JSON(w, http.StatusOK, h.Ctl.Invoice())
}

// AddItem: POST /api/invoice/items
func (h *InvoiceHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	item := h.Ctl.AddItem(r.Context())
	httpx.JSON(w, http.StatusCreated, map[string]any{"item": item, "invoice": h.Ctl.Invoice()})
}

// UpdateItem: PATCH /api/invoice/items/{id}
func (h *InvoiceHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var patch models.ItemPatch
	if err := httpx.Decode(r, &patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	h.Mu.Lock()
	defer h.Mu.Unlock()
	if !h.Ctl.UpdateItem(r.Context(), mux.Vars(r)["id"], patch) {
		httpx.JSONError(w, http.StatusNotFound, "item_not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, h.Ctl.Invoice())
}

// RemoveItem: DELETE /api/invoice/items/{id}
// Removing an unknown id is a success: the sequence is unchanged either way.
func (h *InvoiceHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	h.Ctl.RemoveItem(r.Context(), mux.Vars(r)["id"])
	httpx.JSON(w, http.StatusOK, h.Ctl.Invoice())
}

// UpdateCompany: PATCH /api/invoice/company
func (h *InvoiceHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var patch models.CompanyProfilePatch
	if err := httpx.Decode(r, &patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	h.Mu.Lock()
	defer h.Mu.Unlock()
	h.Ctl.UpdateCompanyProfile(r.Context(), patch)
	httpx.JSON(w, http.StatusOK, h.Ctl.Invoice().CompanyProfile)
}

// Validate: POST /api/invoice/validate
func (h *InvoiceHandler) Validate(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	httpx.JSON(w, http.StatusOK, h.Ctl.Validate())
}

// Save: POST /api/invoice/save – validation gates the save; on success the
// response carries the sanitized filename the export collaborator will use.
func (h *InvoiceHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	result := h.Ctl.Validate()
	if !result.Valid {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", result.Errors)
		return
	}
	if err := h.Ctl.SaveInvoice(r.Context()); err != nil {
		h.Log.WithError(err).Error("save invoice failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"id":             h.Ctl.Invoice().ID,
		"exportFilename": export.Filename(h.Ctl.Invoice()),
	})
}

// Load: POST /api/invoice/load – adopt the durable current invoice.
func (h *InvoiceHandler) Load(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	if !h.Ctl.LoadSavedInvoice(r.Context()) {
		httpx.JSONError(w, http.StatusNotFound, "no_saved_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, h.Ctl.Invoice())
}

// New: POST /api/invoice/new – fresh default, branding carried over.
func (h *InvoiceHandler) New(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	h.Ctl.CreateNew(r.Context())
	httpx.JSON(w, http.StatusOK, h.Ctl.Invoice())
}

// UploadLogo: POST /api/logo – multipart "logo" field, validated and stored
// as a data URI on the embedded company profile. A rejected upload leaves
// the aggregate untouched.
func (h *InvoiceHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(logo.MaxSize + 1024); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_multipart", nil)
		return
	}
	file, _, err := r.FormFile("logo")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "missing_logo_file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, logo.MaxSize+1))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "unreadable_logo_file", nil)
		return
	}
	uri, err := logo.DataURI(data)
	if err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "invalid_logo", err.Error())
		return
	}
	h.Mu.Lock()
	defer h.Mu.Unlock()
	h.Ctl.UpdateCompanyProfile(r.Context(), models.CompanyProfilePatch{Logo: &uri})
	httpx.JSON(w, http.StatusOK, h.Ctl.Invoice().CompanyProfile)
}
