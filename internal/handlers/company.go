package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/zapinvoice/zapinvoice/internal/httpx"
	"github.com/zapinvoice/zapinvoice/internal/services"
	"github.com/zapinvoice/zapinvoice/internal/store"
)

// CompanyHandler manages the stored profile collection. The full list is
// exposed with selection by id; recalling only the most recent profile was a
// limitation of the old UI, not of the data model.
type CompanyHandler struct {
	Mu    *sync.Mutex
	Ctl   *services.InvoiceController
	Store *store.Service
	Log   *logrus.Logger
}

func NewCompanyHandler(mu *sync.Mutex, ctl *services.InvoiceController, st *store.Service, log *logrus.Logger) *CompanyHandler {
	return &CompanyHandler{Mu: mu, Ctl: ctl, Store: st, Log: log}
}

// List: GET /api/profiles
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.ListCompanyProfiles(r.Context()))
}

// Save: POST /api/profiles – persist the aggregate's embedded profile.
func (h *CompanyHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	profile, err := h.Ctl.SaveCompanyProfile(r.Context())
	if err != nil {
		h.Log.WithError(err).Error("save company profile failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_profile", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, profile)
}

// Delete: DELETE /api/profiles/{id}
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteCompanyProfile(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.Log.WithError(err).Error("delete company profile failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_profile", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Apply: POST /api/profiles/{id}/apply – merge a stored profile into the
// live aggregate.
func (h *CompanyHandler) Apply(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	if !h.Ctl.LoadCompanyProfile(r.Context(), mux.Vars(r)["id"]) {
		httpx.JSONError(w, http.StatusNotFound, "profile_not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, h.Ctl.Invoice().CompanyProfile)
}
