package handlers

import (
	"net/http"

	"github.com/zeptools/invoicing-core/routing"
)

// Handlers bundles everything the API router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Items    *ItemsHandler
	Invoices *InvoicesHandler
	Personal *PersonalHandler

	SessionAuth     *SessionAuthWrapper
	InvoiceThrottle *ThrottleWrapper // nil disables throttling e.g. in tests
}

// NewRouter mounts the API surface. Everything except the session endpoints
// sits behind the session-auth wrapper; render actions additionally pass
// the invoice throttle.
func NewRouter(h Handlers) *routing.BaseRouter {
	router := &routing.BaseRouter{ServeMux: http.NewServeMux()}

	authed := []routing.HandlerWrapper{h.SessionAuth}
	throttled := authed
	if h.InvoiceThrottle != nil {
		throttled = append([]routing.HandlerWrapper{}, h.SessionAuth, h.InvoiceThrottle)
	}

	router.Group("/api/", func(api *routing.RouteGroup) {
		api.HandleFunc("POST session", h.Auth.SignIn)
		api.HandleFunc("DELETE session", h.Auth.SignOut)

		api.HandleFunc("GET items", h.Items.List, authed...)
		api.HandleFunc("POST items", h.Items.Create, authed...)
		api.HandleFunc("POST items/batch", h.Items.CreateBatch, authed...)
		api.HandleFunc("PUT items/{id}", h.Items.Update, authed...)
		api.HandleFunc("DELETE items/{id}", h.Items.Delete, authed...)
		api.HandleFunc("DELETE clear", h.Items.Clear, authed...)

		api.HandleFunc("GET invoices", h.Invoices.History, authed...)
		api.HandleFunc("POST invoice/{format}", h.Invoices.Generate, throttled...)
		api.HandleFunc("POST invoices/{id}/{format}", h.Invoices.Replay, throttled...)

		api.HandleFunc("POST personal-invoice", h.Personal.Render, throttled...)
	}, &AccessLogWrapper{})

	return router
}
