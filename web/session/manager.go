package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zeptools/invoicing-core/db/kvdb"
	"github.com/zeptools/invoicing-core/sec"
)

const CookieName = "__Host-wsession"

// Identity is what a web session asserts about its caller: the opaque owner
// id and whether the invoicing module is enabled for them. The core trusts
// this without re-validating.
type Identity struct {
	Owner        string `json:"owner"`
	ModuleAccess bool   `json:"module_access"`
}

type Manager struct {
	Conf              Conf
	Cipher            *sec.XChaCha20Poly1305Cipher
	AppName           string // for session key, etc.
	BackendKVDBClient kvdb.Client
}

func (m *Manager) WebSessionIDToKVDBKey(sessionID string) string {
	return m.AppName + "_wsession:" + sessionID
}

// Establish creates a new session for the identity and sets its cookie.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, id Identity) (string, error) {
	sessionID, err := GenerateWebSessionID()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	payload, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("serialize session identity: %w", err)
	}
	err = m.BackendKVDBClient.Set(ctx,
		m.WebSessionIDToKVDBKey(sessionID),
		string(payload),
		time.Duration(m.Conf.ExpireSliding)*time.Second,
	)
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err = m.setCookie(w, sessionID); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Resolve reads the session cookie, loads the identity behind it and slides
// the expiration forward. Any failure yields no identity, never an error:
// an unauthenticated request is a normal condition.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (Identity, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Identity{}, false
	}
	sessionID, err := m.Cipher.DecodeDecrypt(cookie.Value)
	if err != nil {
		return Identity{}, false
	}
	key := m.WebSessionIDToKVDBKey(string(sessionID))
	payload, found, err := m.BackendKVDBClient.Get(ctx, key)
	if err != nil || !found {
		return Identity{}, false
	}
	var id Identity
	if err = json.Unmarshal([]byte(payload), &id); err != nil {
		return Identity{}, false
	}
	// sliding expiration
	_, _ = m.BackendKVDBClient.Expire(ctx, key, time.Duration(m.Conf.ExpireSliding)*time.Second)
	return id, true
}

// Destroy removes the session behind the cookie and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if sessionID, err := m.Cipher.DecodeDecrypt(cookie.Value); err == nil {
			_, _ = m.BackendKVDBClient.Delete(ctx, m.WebSessionIDToKVDBKey(string(sessionID)))
		}
	}
	m.removeCookie(w)
}

func (m *Manager) setCookie(w http.ResponseWriter, sessionID string) error {
	encSessionID, err := m.Cipher.EncryptEncode([]byte(sessionID))
	if err != nil {
		return fmt.Errorf("failed to encrypt web session id: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:  CookieName,
		Value: encSessionID,
		Path:  "/", // Subpaths will get this cookie.
		// Domain: // Cannot be set with `__Host-`
		HttpOnly: true, // JS cannot read it
		Secure:   true, // only sent over HTTPS
		MaxAge:   m.Conf.ExpireHardcap,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) removeCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Path:     "/",
		MaxAge:   -1, // Delete
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
