package routing

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type markerWrapper struct {
	header string
}

func (mw *markerWrapper) Wrap(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("X-Wrapped", mw.header)
		inner.ServeHTTP(w, r)
	})
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestGroupPrefixAndMethod(t *testing.T) {
	router := &BaseRouter{ServeMux: http.NewServeMux()}
	router.Group("/api/", func(api *RouteGroup) {
		api.HandleFunc("GET items", okHandler)
		api.Group("invoices/", func(inv *RouteGroup) {
			inv.HandleFunc("POST {id}/replay", okHandler)
		})
	})

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/api/items", http.StatusOK},
		{http.MethodPost, "/api/items", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/invoices/abc/replay", http.StatusOK},
		{http.MethodGet, "/api/nothing", http.StatusNotFound},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, nil))
		if rec.Code != tc.want {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.target, rec.Code, tc.want)
		}
	}
}

func TestWrapperOrder(t *testing.T) {
	router := &BaseRouter{ServeMux: http.NewServeMux()}
	router.Group("/api/", func(api *RouteGroup) {
		api.HandleFunc("GET items", okHandler, &markerWrapper{header: "route"})
	}, &markerWrapper{header: "group"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))

	got := rec.Header().Values("X-Wrapped")
	if len(got) != 2 || got[0] != "group" || got[1] != "route" {
		t.Errorf("wrapper order = %v, want [group route]", got)
	}
}
