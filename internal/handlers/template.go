package handlers

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/zapinvoice/zapinvoice/internal/httpx"
	"github.com/zapinvoice/zapinvoice/internal/services"
	"github.com/zapinvoice/zapinvoice/internal/store"
)

// TemplateHandler manages saved invoice presets.
type TemplateHandler struct {
	Mu    *sync.Mutex
	Ctl   *services.InvoiceController
	Store *store.Service
	Log   *logrus.Logger
}

func NewTemplateHandler(mu *sync.Mutex, ctl *services.InvoiceController, st *store.Service, log *logrus.Logger) *TemplateHandler {
	return &TemplateHandler{Mu: mu, Ctl: ctl, Store: st, Log: log}
}

// List: GET /api/templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.ListInvoiceTemplates(r.Context()))
}

// Save: POST /api/templates – snapshot the live invoice as a named preset.
func (h *TemplateHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required"})
		return
	}
	h.Mu.Lock()
	defer h.Mu.Unlock()
	tpl, err := h.Ctl.SaveAsTemplate(r.Context(), req.Name)
	if err != nil {
		h.Log.WithError(err).Error("save template failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_template", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, tpl)
}

// Delete: DELETE /api/templates/{id}
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteInvoiceTemplate(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.Log.WithError(err).Error("delete template failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_template", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Apply: POST /api/templates/{id}/apply – replace the live aggregate with a
// fresh invoice pre-filled from the preset.
func (h *TemplateHandler) Apply(w http.ResponseWriter, r *http.Request) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	if !h.Ctl.ApplyTemplate(r.Context(), mux.Vars(r)["id"]) {
		httpx.JSONError(w, http.StatusNotFound, "template_not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, h.Ctl.Invoice())
}
