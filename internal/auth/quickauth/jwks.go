package quickauth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

const jwksPath = "/.well-known/jwks.json"

// keySet caches the auth server's signing keys, refreshing on unknown key IDs.
// Concurrent refreshes for the same generation are coalesced so a burst of
// requests after a key rotation triggers a single JWKS fetch.
type keySet struct {
	endpoint string
	client   *http.Client

	mu   sync.RWMutex
	keys map[string]*ecdsa.PublicKey
	sf   singleflight.Group
}

func newKeySet(authURL string, timeout time.Duration) *keySet {
	return &keySet{
		endpoint: authURL + jwksPath,
		client:   &http.Client{Timeout: timeout},
		keys:     map[string]*ecdsa.PublicKey{},
	}
}

// keyfunc resolves the token's kid against the cached key set.
func (ks *keySet) keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header has no kid")
		}

		if key := ks.lookup(kid); key != nil {
			return key, nil
		}

		if err := ks.refresh(ctx); err != nil {
			return nil, fmt.Errorf("fetch jwks: %w", err)
		}

		if key := ks.lookup(kid); key != nil {
			return key, nil
		}
		return nil, fmt.Errorf("no signing key for kid %q", kid)
	}
}

func (ks *keySet) lookup(kid string) *ecdsa.PublicKey {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return ks.keys[kid]
}

func (ks *keySet) refresh(ctx context.Context) error {
	_, err, _ := ks.sf.Do("refresh", func() (interface{}, error) {
		keys, err := ks.fetch(ctx)
		if err != nil {
			return nil, err
		}
		ks.mu.Lock()
		ks.keys = keys
		ks.mu.Unlock()
		return nil, nil
	})
	return err
}

type jwksDocument struct {
	Keys []jwkEntry `json:"keys"`
}

type jwkEntry struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	Kid string `json:"kid"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

func (ks *keySet) fetch(ctx context.Context) (map[string]*ecdsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := ks.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}

	keys := make(map[string]*ecdsa.PublicKey, len(doc.Keys))
	for _, entry := range doc.Keys {
		if entry.Kty != "EC" || entry.Crv != "P-256" || entry.Kid == "" {
			continue
		}
		key, err := parseECKey(entry)
		if err != nil {
			return nil, fmt.Errorf("parse jwk %q: %w", entry.Kid, err)
		}
		keys[entry.Kid] = key
	}

	if len(keys) == 0 {
		return nil, errors.New("jwks document contains no usable keys")
	}
	return keys, nil
}

func parseECKey(entry jwkEntry) (*ecdsa.PublicKey, error) {
	xBytes, err := base64.RawURLEncoding.DecodeString(entry.X)
	if err != nil {
		return nil, err
	}
	yBytes, err := base64.RawURLEncoding.DecodeString(entry.Y)
	if err != nil {
		return nil, err
	}

	key := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}
	if !key.Curve.IsOnCurve(key.X, key.Y) {
		return nil, errors.New("point is not on P-256")
	}
	return key, nil
}
