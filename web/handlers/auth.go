package handlers

import (
	"crypto/rsa"
	"net/http"
	"strings"

	"github.com/zeptools/invoicing-core/responses"
	"github.com/zeptools/invoicing-core/sec"
	"github.com/zeptools/invoicing-core/web/session"
)

// AuthHandler exchanges an id_token from the identity collaborator for a
// web session cookie. The token's subject is the opaque owner id.
type AuthHandler struct {
	Sessions         *session.Manager
	IDTokenPublicKey *rsa.PublicKey
}

type signInReply struct {
	Owner        string `json:"owner"`
	ModuleAccess bool   `json:"module_access"`
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// SignIn - POST /api/session
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "bearer id_token required")
		return
	}
	claims, err := sec.VerifyIDToken(token, h.IDTokenPublicKey)
	if err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "invalid id_token")
		return
	}
	if claims.Subject == "" {
		responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "id_token subject required")
		return
	}
	id := session.Identity{
		Owner:        claims.Subject,
		ModuleAccess: claims.ModuleAccess,
	}
	if _, err = h.Sessions.Establish(r.Context(), w, id); err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "failed to establish session")
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, signInReply{
		Owner:        id.Owner,
		ModuleAccess: id.ModuleAccess,
	})
}

// SignOut - DELETE /api/session
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Destroy(r.Context(), w, r)
	w.WriteHeader(http.StatusNoContent)
}
