package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/zapinvoice/zapinvoice/internal/models"
	"github.com/zapinvoice/zapinvoice/internal/services"
	"github.com/zapinvoice/zapinvoice/internal/store"
)

// testRig wires the handlers onto a router the way internal/server does,
// against in-memory stores.
func testRig(t *testing.T) (*mux.Router, *services.InvoiceController, *store.Service) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	st := store.NewService(store.NewMemory(), store.NewMemory(), log)
	ctl := services.NewInvoiceController(context.Background(), st, log)

	var mu sync.Mutex
	r := mux.NewRouter()
	ih := NewInvoiceHandler(&mu, ctl, log)
	r.HandleFunc("/api/invoice", ih.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/invoice", ih.Update).Methods(http.MethodPatch)
	r.HandleFunc("/api/invoice/items", ih.AddItem).Methods(http.MethodPost)
	r.HandleFunc("/api/invoice/items/{id}", ih.UpdateItem).Methods(http.MethodPatch)
	r.HandleFunc("/api/invoice/items/{id}", ih.RemoveItem).Methods(http.MethodDelete)
	r.HandleFunc("/api/invoice/company", ih.UpdateCompany).Methods(http.MethodPatch)
	r.HandleFunc("/api/invoice/validate", ih.Validate).Methods(http.MethodPost)
	r.HandleFunc("/api/invoice/save", ih.Save).Methods(http.MethodPost)
	r.HandleFunc("/api/invoice/load", ih.Load).Methods(http.MethodPost)
	r.HandleFunc("/api/invoice/new", ih.New).Methods(http.MethodPost)
	r.HandleFunc("/api/logo", ih.UploadLogo).Methods(http.MethodPost)

	ch := NewCompanyHandler(&mu, ctl, st, log)
	r.HandleFunc("/api/profiles", ch.List).Methods(http.MethodGet)
	r.HandleFunc("/api/profiles", ch.Save).Methods(http.MethodPost)
	r.HandleFunc("/api/profiles/{id}", ch.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/api/profiles/{id}/apply", ch.Apply).Methods(http.MethodPost)

	th := NewTemplateHandler(&mu, ctl, st, log)
	r.HandleFunc("/api/templates", th.List).Methods(http.MethodGet)
	r.HandleFunc("/api/templates", th.Save).Methods(http.MethodPost)
	r.HandleFunc("/api/templates/{id}/apply", th.Apply).Methods(http.MethodPost)

	return r, ctl, st
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetInvoice(t *testing.T) {
	r, ctl, _ := testRig(t)
	w := doJSON(t, r, http.MethodGet, "/api/invoice", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var inv models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &inv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if inv.ID != ctl.Invoice().ID {
		t.Errorf("expected the live aggregate, got id %q", inv.ID)
	}
}

func TestAddAndUpdateItemOverHTTP(t *testing.T) {
	r, ctl, _ := testRig(t)

	w := doJSON(t, r, http.MethodPost, "/api/invoice/items", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		Item models.InvoiceItem `json:"item"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = doJSON(t, r, http.MethodPatch, "/api/invoice/items/"+created.Item.ID,
		`{"description":"Consulting","quantity":2,"rate":150}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update item: expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	inv := ctl.Invoice()
	if inv.Items[0].Amount != 300 || inv.Subtotal != 300 {
		t.Errorf("expected recomputed totals, got amount=%v subtotal=%v", inv.Items[0].Amount, inv.Subtotal)
	}

	w = doJSON(t, r, http.MethodPatch, "/api/invoice/items/unknown", `{"rate":1}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown item: expected 404, got %d", w.Code)
	}
}

func TestRemoveItemOverHTTP(t *testing.T) {
	r, ctl, _ := testRig(t)
	item := ctl.AddItem(context.Background())

	w := doJSON(t, r, http.MethodDelete, "/api/invoice/items/"+item.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(ctl.Invoice().Items) != 0 {
		t.Error("expected the item removed")
	}

	// unknown ids are still a success
	w = doJSON(t, r, http.MethodDelete, "/api/invoice/items/ghost", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for unknown id, got %d", w.Code)
	}
}

func TestPatchInvoiceDiscountRecomputes(t *testing.T) {
	r, ctl, _ := testRig(t)
	ctx := context.Background()
	item := ctl.AddItem(ctx)
	ctl.UpdateItem(ctx, item.ID, models.ItemPatch{Quantity: f64(2), Rate: f64(50)})

	w := doJSON(t, r, http.MethodPatch, "/api/invoice", `{"discount":10,"taxRate":8}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	inv := ctl.Invoice()
	if inv.DiscountAmount != 10 || inv.TaxAmount != 7.2 || inv.Total != 97.2 {
		t.Errorf("unexpected totals: %+v", inv)
	}
}

func TestSaveRejectsInvalidInvoice(t *testing.T) {
	r, _, _ := testRig(t)
	w := doJSON(t, r, http.MethodPost, "/api/invoice/save", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "validation_failed" || len(resp.Details) == 0 {
		t.Errorf("expected the ordered error list, got %+v", resp)
	}
}

func TestSaveThenLoad(t *testing.T) {
	r, ctl, _ := testRig(t)
	fill(t, ctl)

	w := doJSON(t, r, http.MethodPost, "/api/invoice/save", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasSuffix(resp["exportFilename"], ".pdf") {
		t.Errorf("expected an export filename, got %q", resp["exportFilename"])
	}

	savedNumber := ctl.Invoice().Number
	doJSON(t, r, http.MethodPost, "/api/invoice/new", "")
	if ctl.Invoice().Number == savedNumber {
		t.Fatal("expected a fresh invoice after /new")
	}
	w = doJSON(t, r, http.MethodPost, "/api/invoice/load", "")
	if w.Code != http.StatusOK {
		t.Fatalf("load: expected 200, got %d", w.Code)
	}
	if ctl.Invoice().Number != savedNumber {
		t.Errorf("expected the saved invoice back, got %q", ctl.Invoice().Number)
	}
}

func TestLoadWithoutSavedInvoice(t *testing.T) {
	r, _, _ := testRig(t)
	w := doJSON(t, r, http.MethodPost, "/api/invoice/load", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestProfileLifecycleOverHTTP(t *testing.T) {
	r, ctl, _ := testRig(t)
	ctx := context.Background()
	ctl.UpdateCompanyProfile(ctx, models.CompanyProfilePatch{Name: str("Acme"), Email: str("a@acme.test")})

	w := doJSON(t, r, http.MethodPost, "/api/profiles", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("save profile: expected 201, got %d", w.Code)
	}
	var stored models.CompanyProfile
	if err := json.Unmarshal(w.Body.Bytes(), &stored); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = doJSON(t, r, http.MethodGet, "/api/profiles", "")
	var profiles []models.CompanyProfile
	if err := json.Unmarshal(w.Body.Bytes(), &profiles); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(profiles) != 1 || profiles[0].ID != stored.ID {
		t.Fatalf("unexpected list: %#v", profiles)
	}

	ctl.UpdateCompanyProfile(ctx, models.CompanyProfilePatch{Name: str("Changed")})
	w = doJSON(t, r, http.MethodPost, "/api/profiles/"+stored.ID+"/apply", "")
	if w.Code != http.StatusOK {
		t.Fatalf("apply: expected 200, got %d", w.Code)
	}
	if ctl.Invoice().CompanyProfile.Name != "Acme" {
		t.Errorf("expected the stored profile applied, got %q", ctl.Invoice().CompanyProfile.Name)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/profiles/"+stored.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
}

func TestTemplateOverHTTP(t *testing.T) {
	r, ctl, _ := testRig(t)
	fill(t, ctl)

	w := doJSON(t, r, http.MethodPost, "/api/templates", `{"name":"Retainer"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("save template: expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	var tpl models.InvoiceTemplate
	if err := json.Unmarshal(w.Body.Bytes(), &tpl); err != nil {
		t.Fatalf("decode: %v", err)
	}

	doJSON(t, r, http.MethodPost, "/api/invoice/new", "")
	w = doJSON(t, r, http.MethodPost, "/api/templates/"+tpl.ID+"/apply", "")
	if w.Code != http.StatusOK {
		t.Fatalf("apply: expected 200, got %d", w.Code)
	}
	if len(ctl.Invoice().Items) != 1 {
		t.Errorf("expected template items applied, got %#v", ctl.Invoice().Items)
	}

	w = doJSON(t, r, http.MethodPost, "/api/templates", `{"name":""}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank name: expected 400, got %d", w.Code)
	}
}

func TestUploadLogo(t *testing.T) {
	r, ctl, _ := testRig(t)

	var png1x1 bytes.Buffer
	if err := png.Encode(&png1x1, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("logo", "logo.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(png1x1.Bytes()); err != nil {
		t.Fatalf("write: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/logo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(ctl.Invoice().CompanyProfile.Logo, "data:image/png;base64,") {
		t.Errorf("expected a png data URI, got %q", ctl.Invoice().CompanyProfile.Logo[:32])
	}
}

func TestUploadLogoRejectsNonImage(t *testing.T) {
	r, ctl, _ := testRig(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("logo", "notes.txt")
	_, _ = fw.Write([]byte("plain text, not an image"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/logo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if ctl.Invoice().CompanyProfile.Logo != "" {
		t.Error("a rejected upload must leave the aggregate untouched")
	}
}

func str(s string) *string   { return &s }
func f64(f float64) *float64 { return &f }

func fill(t *testing.T, ctl *services.InvoiceController) {
	t.Helper()
	ctx := context.Background()
	ctl.UpdateCompanyProfile(ctx, models.CompanyProfilePatch{Name: str("Acme"), Email: str("a@acme.test")})
	ctl.UpdateInvoice(ctx, models.InvoicePatch{ClientName: str("Globex")})
	item := ctl.AddItem(ctx)
	ctl.UpdateItem(ctx, item.ID, models.ItemPatch{Description: str("Consulting"), Quantity: f64(2), Rate: f64(150)})
}
