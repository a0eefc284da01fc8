// Package jwtkeys is a small self-contained recipe: create signed JWTs and
// serve the matching public keys as a JWKS document. It is deliberately
// independent of the sign-in/sign-up flow.
package jwtkeys

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/veriflow/veriflow/internal/config"
	"github.com/veriflow/veriflow/internal/utils"
	"go.uber.org/fx"
)

// JSONWebKey is one JWKS entry for an RSA signing key.
type JSONWebKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
	Alg string `json:"alg"`
	Use string `json:"use"`
}

type Recipe struct {
	key             *rsa.PrivateKey
	kid             string
	defaultValidity time.Duration
}

// NewRecipe generates a fresh RS256 signing key. Key material lives for the
// process lifetime; rotation means restarting.
func NewRecipe(cfg *config.Config) (*Recipe, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return &Recipe{
		key:             key,
		kid:             uuid.NewString(),
		defaultValidity: time.Duration(cfg.JWT.ValiditySeconds) * time.Second,
	}, nil
}

// CreateJWT signs payload as an RS256 JWT. A non-positive validity falls back
// to the configured default.
func (r *Recipe) CreateJWT(payload map[string]interface{}, validity time.Duration) (string, error) {
	if validity <= 0 {
		validity = r.defaultValidity
	}

	claims := jwt.MapClaims{}
	for key, value := range payload {
		claims[key] = value
	}
	now := time.Now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(validity).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = r.kid

	signed, err := token.SignedString(r.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// GetJWKS lists the public keys JWT consumers need for verification.
func (r *Recipe) GetJWKS() []JSONWebKey {
	public := &r.key.PublicKey
	return []JSONWebKey{{
		Kty: "RSA",
		Kid: r.kid,
		N:   base64.RawURLEncoding.EncodeToString(public.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(public.E)).Bytes()),
		Alg: "RS256",
		Use: "sig",
	}}
}

// HandleJWKS handles GET {basePath}/jwt/jwks.json
func (r *Recipe) HandleJWKS(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	utils.WriteJSON(w, map[string]interface{}{
		"status": "OK",
		"keys":   r.GetJWKS(),
	})
}

// Module provides the jwtkeys recipe dependencies
var Module = fx.Module("jwtkeys",
	fx.Provide(
		NewRecipe,
	),
)
