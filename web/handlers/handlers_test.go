package handlers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zeptools/invoicing-core/billing"
	"github.com/zeptools/invoicing-core/db/kvdb/impls/memkv"
	"github.com/zeptools/invoicing-core/layout"
	"github.com/zeptools/invoicing-core/ledger"
	"github.com/zeptools/invoicing-core/money"
	"github.com/zeptools/invoicing-core/pdfs"
	"github.com/zeptools/invoicing-core/pdfs/impls/fpdf"
	"github.com/zeptools/invoicing-core/pricing"
	"github.com/zeptools/invoicing-core/render/personal"
	"github.com/zeptools/invoicing-core/sec"
	"github.com/zeptools/invoicing-core/snapshot/stores/memstore"
	"github.com/zeptools/invoicing-core/throttle"
	"github.com/zeptools/invoicing-core/web/session"
)

type stubRenderer struct{}

func (stubRenderer) Kind() string        { return "Invoice" }
func (stubRenderer) Extension() string   { return "pdf" }
func (stubRenderer) ContentType() string { return "application/pdf" }
func (stubRenderer) Render(d billing.Document) ([]byte, error) {
	return []byte(fmt.Sprintf("%s|%d", d.Number, d.Subtotal())), nil
}

type testEnv struct {
	router   http.Handler
	sessions *session.Manager
	key      *rsa.PrivateKey
}

func newTestEnv(t *testing.T, burst int) *testEnv {
	t.Helper()

	cipher, err := sec.NewXChaCha20Poly1305CipherBase64([]byte(strings.Repeat("k", 32)))
	if err != nil {
		t.Fatal(err)
	}
	sessions := &session.Manager{
		Conf:              session.Conf{ExpireSliding: 600, ExpireHardcap: 3600},
		Cipher:            cipher,
		AppName:           "invoicing",
		BackendKVDBClient: memkv.New(),
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	billingSvc := &billing.Service{
		Profile:     billing.Profile{Name: "ACME DIAGNOSTICS"},
		Money:       money.DefaultFormatter(),
		Ledgers:     ledger.NewStore(pricing.DefaultTariff()),
		Snapshots:   memstore.New(),
		Renderers:   map[string]billing.Renderer{"pdf": stubRenderer{}},
		ActionLocks: &sync.Map{},
	}

	buckets := throttle.NewBucketStore[string](context.Background(), time.Minute, time.Hour)
	buckets.SetBucketGroup("invoice-render", &throttle.BucketConf{
		Burst: burst, Increment: burst, Period: time.Minute,
	})

	personalRenderer := personal.New(
		layout.DefaultGrid(pdfs.LetterSize),
		money.DefaultFormatter(),
		func(p pdfs.PaperSize) pdfs.Canvas { return fpdf.New(p) },
	)

	router := NewRouter(Handlers{
		Auth:        &AuthHandler{Sessions: sessions, IDTokenPublicKey: &key.PublicKey},
		Items:       &ItemsHandler{Ledgers: billingSvc.Ledgers},
		Invoices:    &InvoicesHandler{Billing: billingSvc},
		Personal:    &PersonalHandler{Renderer: personalRenderer},
		SessionAuth: &SessionAuthWrapper{Sessions: sessions},
		InvoiceThrottle: &ThrottleWrapper{
			Buckets: buckets,
			GroupID: "invoice-render",
		},
	})
	return &testEnv{router: router, sessions: sessions, key: key}
}

func (e *testEnv) signedIDToken(t *testing.T, subject string, moduleAccess bool) string {
	t.Helper()
	claims := sec.IDTokenClaims{
		ModuleAccess: moduleAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(e.key)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

// signIn establishes a session over the API and returns the cookies to
// attach to subsequent requests.
func (e *testEnv) signIn(t *testing.T, owner string, moduleAccess bool) []*http.Cookie {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/session", nil)
	r.Header.Set("Authorization", "Bearer "+e.signedIDToken(t, owner, moduleAccess))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("sign-in status = %d, body %s", rec.Code, rec.Body.String())
	}
	return rec.Result().Cookies()
}

func (e *testEnv) do(t *testing.T, method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, r)
	return rec
}

func decodeListReply(t *testing.T, rec *httptest.ResponseRecorder) listReply {
	t.Helper()
	var reply listReply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode list reply: %v (%s)", err, rec.Body.String())
	}
	return reply
}

func TestSignInBadToken(t *testing.T) {
	env := newTestEnv(t, 10)
	r := httptest.NewRequest(http.MethodPost, "/api/session", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, r)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUnauthenticatedBlocked(t *testing.T) {
	env := newTestEnv(t, 10)
	rec := env.do(t, http.MethodGet, "/api/items", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestModuleAccessRequired(t *testing.T) {
	env := newTestEnv(t, 10)
	cookies := env.signIn(t, "owner-1", false)
	rec := env.do(t, http.MethodGet, "/api/items", "", cookies)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestItemLifecycle(t *testing.T) {
	env := newTestEnv(t, 10)
	cookies := env.signIn(t, "owner-1", true)

	rec := env.do(t, http.MethodPost, "/api/items", `{"name":"Chest X-Ray"}`, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created ledger.Item
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID != 1 || created.Price != 100_000 {
		t.Errorf("created = %+v, want id 1 price 100000", created)
	}

	rec = env.do(t, http.MethodPost, "/api/items", `{"name":"MRI Scan","price":250000}`, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/api/items/2", `{"name":"MRI Brain Scan"}`, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated ledger.Item
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatal(err)
	}
	// price omitted -> tariff rate for position 2
	if updated.Name != "MRI Brain Scan" || updated.Price != 100_000 {
		t.Errorf("updated = %+v", updated)
	}

	rec = env.do(t, http.MethodDelete, "/api/items/1", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	reply := decodeListReply(t, rec)
	if len(reply.Items) != 1 || reply.Items[0].ID != 1 || reply.Items[0].Name != "MRI Brain Scan" {
		t.Errorf("remaining items must renumber from 1, got %+v", reply.Items)
	}

	rec = env.do(t, http.MethodDelete, "/api/clear", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/items", "", cookies)
	if reply = decodeListReply(t, rec); len(reply.Items) != 0 {
		t.Errorf("ledger must be empty after clear, got %+v", reply.Items)
	}
}

func TestItemBatch(t *testing.T) {
	env := newTestEnv(t, 10)
	cookies := env.signIn(t, "owner-1", true)

	rec := env.do(t, http.MethodPost, "/api/items/batch",
		`{"names":["JOHN_DOE_study.pdf","jane_roe_scan.pdf"]}`, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("batch status = %d, body %s", rec.Code, rec.Body.String())
	}
	reply := decodeListReply(t, rec)
	if len(reply.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(reply.Items))
	}
	if reply.Items[0].Name != "John Doe Study" {
		t.Errorf("cleaned name = %q", reply.Items[0].Name)
	}
	if reply.Subtotal != 200_000 {
		t.Errorf("subtotal = %d, want 200000", reply.Subtotal)
	}
}

func TestItemValidation(t *testing.T) {
	env := newTestEnv(t, 10)
	cookies := env.signIn(t, "owner-1", true)

	if rec := env.do(t, http.MethodPost, "/api/items", `{"name":"  "}`, cookies); rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want 400", rec.Code)
	}
	if rec := env.do(t, http.MethodPut, "/api/items/9", `{"name":"X"}`, cookies); rec.Code != http.StatusNotFound {
		t.Errorf("missing item status = %d, want 404", rec.Code)
	}
	if rec := env.do(t, http.MethodPut, "/api/items/abc", `{"name":"X"}`, cookies); rec.Code != http.StatusBadRequest {
		t.Errorf("non-integer id status = %d, want 400", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/items", `{"name":"X","price":"abc"}`, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-integer price status = %d, want 400", rec.Code)
	}
	if got := rec.Body.String(); !strings.Contains(got, "price must be an integer") {
		t.Errorf("non-integer price body = %q, want the price error", got)
	}
	if rec := env.do(t, http.MethodPut, "/api/items/1", `{"name":"X","price":1.5}`, cookies); rec.Code != http.StatusBadRequest {
		t.Errorf("fractional price on update status = %d, want 400", rec.Code)
	}
}

func TestOwnersIsolated(t *testing.T) {
	env := newTestEnv(t, 10)
	first := env.signIn(t, "owner-1", true)
	second := env.signIn(t, "owner-2", true)

	env.do(t, http.MethodPost, "/api/items", `{"name":"Only Mine"}`, first)

	rec := env.do(t, http.MethodGet, "/api/items", "", second)
	if reply := decodeListReply(t, rec); len(reply.Items) != 0 {
		t.Errorf("owner-2 must not see owner-1 items, got %+v", reply.Items)
	}
}

func TestGenerateInvoice(t *testing.T) {
	env := newTestEnv(t, 10)
	cookies := env.signIn(t, "owner-1", true)
	env.do(t, http.MethodPost, "/api/items", `{"name":"Chest X-Ray"}`, cookies)

	rec := env.do(t, http.MethodPost, "/api/invoice/pdf", `{"number":"FAC-7"}`, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, `"Invoice_FAC-7.pdf"`) {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Body.String(); got != "FAC-7|100000" {
		t.Errorf("artifact = %q", got)
	}
}

func TestGenerateInvoiceEmptyLedger(t *testing.T) {
	env := newTestEnv(t, 10)
	cookies := env.signIn(t, "owner-1", true)

	rec := env.do(t, http.MethodPost, "/api/invoice/pdf", "", cookies)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/invoices", "", cookies)
	var history historyReply
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatal(err)
	}
	if len(history.Snapshots) != 0 {
		t.Errorf("failed generation must not record a snapshot, got %d", len(history.Snapshots))
	}
}

func TestGenerateInvoiceUnknownFormat(t *testing.T) {
	env := newTestEnv(t, 10)
	cookies := env.signIn(t, "owner-1", true)
	env.do(t, http.MethodPost, "/api/items", `{"name":"Chest X-Ray"}`, cookies)

	if rec := env.do(t, http.MethodPost, "/api/invoice/docx", "", cookies); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestReplaySnapshot(t *testing.T) {
	env := newTestEnv(t, 10)
	cookies := env.signIn(t, "owner-1", true)
	env.do(t, http.MethodPost, "/api/items", `{"name":"Chest X-Ray"}`, cookies)
	env.do(t, http.MethodPost, "/api/invoice/pdf", `{"number":"FAC-7"}`, cookies)

	// mutate the live ledger after the snapshot
	env.do(t, http.MethodDelete, "/api/clear", "", cookies)

	rec := env.do(t, http.MethodGet, "/api/invoices", "", cookies)
	var history historyReply
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatal(err)
	}
	if len(history.Snapshots) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(history.Snapshots))
	}

	rec = env.do(t, http.MethodPost, "/api/invoices/"+history.Snapshots[0].ID+"/pdf", "", cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("replay status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != "FAC-7|100000" {
		t.Errorf("replayed artifact = %q, want frozen snapshot content", got)
	}
}

func TestReplayUnknownSnapshot(t *testing.T) {
	env := newTestEnv(t, 10)
	cookies := env.signIn(t, "owner-1", true)
	if rec := env.do(t, http.MethodPost, "/api/invoices/no-such-id/pdf", "", cookies); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestInvoiceThrottle(t *testing.T) {
	env := newTestEnv(t, 1)
	cookies := env.signIn(t, "owner-1", true)
	env.do(t, http.MethodPost, "/api/items", `{"name":"Chest X-Ray"}`, cookies)

	if rec := env.do(t, http.MethodPost, "/api/invoice/pdf", "", cookies); rec.Code != http.StatusOK {
		t.Fatalf("first render status = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/invoice/pdf", "", cookies); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second render status = %d, want 429", rec.Code)
	}
}

func TestPersonalEndpoint(t *testing.T) {
	env := newTestEnv(t, 10)
	cookies := env.signIn(t, "owner-1", true)

	body := `{
		"number": "PERS-1",
		"issuer": {"name": "Jane Roe", "address": "1 Main St", "email": "jane@example.com"},
		"client": {"name": "ACME Corp"},
		"status": "paid",
		"tax_rate": "10",
		"items": [{"description": "Consulting", "quantity": "2", "unit_value": "1500.50"}]
	}`
	rec := env.do(t, http.MethodPost, "/api/personal-invoice", body, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, `"PersonalInvoice_PERS-1.pdf"`) {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("body must be a PDF stream")
	}
}

func TestPersonalEndpointValidation(t *testing.T) {
	env := newTestEnv(t, 10)
	cookies := env.signIn(t, "owner-1", true)

	noItems := `{"number": "PERS-1", "items": []}`
	if rec := env.do(t, http.MethodPost, "/api/personal-invoice", noItems, cookies); rec.Code != http.StatusBadRequest {
		t.Errorf("no items status = %d, want 400", rec.Code)
	}

	badStatus := `{"status": "cancelled", "items": [{"description": "X", "quantity": "1", "unit_value": "1"}]}`
	if rec := env.do(t, http.MethodPost, "/api/personal-invoice", badStatus, cookies); rec.Code != http.StatusBadRequest {
		t.Errorf("bad status status = %d, want 400", rec.Code)
	}
}

func TestSignOut(t *testing.T) {
	env := newTestEnv(t, 10)
	cookies := env.signIn(t, "owner-1", true)

	rec := env.do(t, http.MethodDelete, "/api/session", "", cookies)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("sign-out status = %d", rec.Code)
	}
	if rec = env.do(t, http.MethodGet, "/api/items", "", cookies); rec.Code != http.StatusUnauthorized {
		t.Errorf("status after sign-out = %d, want 401", rec.Code)
	}
}
