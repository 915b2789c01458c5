package sec

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// IDTokenClaims is what the identity collaborator asserts about a caller:
// the opaque owner id (standard subject) plus the module-access flag. The
// core trusts these claims once the signature verifies.
type IDTokenClaims struct {
	ModuleAccess bool `json:"module_access"`
	jwt.RegisteredClaims
}

// VerifyIDToken validates an RS256 id_token and returns its claims.
func VerifyIDToken(tokenString string, pub *rsa.PublicKey) (*IDTokenClaims, error) {
	claims := &IDTokenClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return pub, nil
		},
		jwt.WithValidMethods([]string{"RS256"}),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid id_token")
	}
	return claims, nil
}

// LoadRSAPublicKey parses a PEM-encoded RSA public key.
func LoadRSAPublicKey(pemBytes []byte) (*rsa.PublicKey, error) {
	return jwt.ParseRSAPublicKeyFromPEM(pemBytes)
}
