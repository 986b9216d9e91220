package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/zapinvoice/zapinvoice/internal/handlers"
	"github.com/zapinvoice/zapinvoice/internal/httpx"
	"github.com/zapinvoice/zapinvoice/internal/services"
	"github.com/zapinvoice/zapinvoice/internal/store"
)

// New constructs the root handler with all routes and middlewares applied.
// One mutex serializes every access to the single live aggregate.
func New(ctl *services.InvoiceController, st *store.Service, log *logrus.Logger) http.Handler {
	var mu sync.Mutex

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	ih := handlers.NewInvoiceHandler(&mu, ctl, log)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/invoice", ih.Get).Methods(http.MethodGet)
	api.HandleFunc("/invoice", ih.Update).Methods(http.MethodPatch)
	api.HandleFunc("/invoice/items", ih.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/invoice/items/{id}", ih.UpdateItem).Methods(http.MethodPatch)
	api.HandleFunc("/invoice/items/{id}", ih.RemoveItem).Methods(http.MethodDelete)
	api.HandleFunc("/invoice/company", ih.UpdateCompany).Methods(http.MethodPatch)
	api.HandleFunc("/invoice/validate", ih.Validate).Methods(http.MethodPost)
	api.HandleFunc("/invoice/save", ih.Save).Methods(http.MethodPost)
	api.HandleFunc("/invoice/load", ih.Load).Methods(http.MethodPost)
	api.HandleFunc("/invoice/new", ih.New).Methods(http.MethodPost)
	api.HandleFunc("/logo", ih.UploadLogo).Methods(http.MethodPost)

	ch := handlers.NewCompanyHandler(&mu, ctl, st, log)
	api.HandleFunc("/profiles", ch.List).Methods(http.MethodGet)
	api.HandleFunc("/profiles", ch.Save).Methods(http.MethodPost)
	api.HandleFunc("/profiles/{id}", ch.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/profiles/{id}/apply", ch.Apply).Methods(http.MethodPost)

	th := handlers.NewTemplateHandler(&mu, ctl, st, log)
	api.HandleFunc("/templates", th.List).Methods(http.MethodGet)
	api.HandleFunc("/templates", th.Save).Methods(http.MethodPost)
	api.HandleFunc("/templates/{id}", th.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/templates/{id}/apply", th.Apply).Methods(http.MethodPost)

	return withRecover(withLogging(r, log), log)
}

func withLogging(next http.Handler, log *logrus.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}

func withRecover(next http.Handler, log *logrus.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithField("panic", rec).Error("handler panic")
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
