package auth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultCertsURL serves the identity provider's current token-signing
// certificates as a JSON object of key ID to PEM certificate.
const DefaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

// Claims is the decoded payload of a verified ID token.
type Claims = jwt.MapClaims

// InitResult is the typed outcome of verifier initialization.
type InitResult int

const (
	// InitSkipped means no project ID is configured; the process runs with
	// token verification unavailable.
	InitSkipped InitResult = iota
	// InitInitialized means signing certificates were loaded and tokens can
	// be verified.
	InitInitialized
	// InitFailed means certificate loading failed; verification stays
	// unavailable and every request is treated as anonymous.
	InitFailed
)

func (r InitResult) String() string {
	switch r {
	case InitInitialized:
		return "initialized"
	case InitFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Verifier checks bearer ID tokens against the identity provider's published
// RS256 signing certificates. It fails closed: any verification problem,
// from a malformed header to an expired token, yields anonymous access
// rather than an error response.
type Verifier struct {
	ProjectID  string
	CertsURL   string
	HTTPClient *http.Client

	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

// Init loads the signing certificates once at process startup. It returns
// InitSkipped when no project ID is configured and InitFailed (with the
// cause) when the certificates cannot be fetched or parsed; the caller
// continues either way.
func (v *Verifier) Init(ctx context.Context) (InitResult, error) {
	if v == nil || v.ProjectID == "" {
		return InitSkipped, nil
	}
	keys, err := v.fetchKeys(ctx)
	if err != nil {
		return InitFailed, err
	}
	v.mu.Lock()
	v.keys = keys
	v.mu.Unlock()
	return InitInitialized, nil
}

// Available reports whether signing certificates are loaded.
func (v *Verifier) Available() bool {
	if v == nil {
		return false
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.keys) > 0
}

func (v *Verifier) fetchKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	certsURL := v.CertsURL
	if certsURL == "" {
		certsURL = DefaultCertsURL
	}
	client := v.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, certsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch certs: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch certs: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read certs: %w", err)
	}

	var certs map[string]string
	if err := json.Unmarshal(body, &certs); err != nil {
		return nil, fmt.Errorf("decode certs: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pemCert := range certs {
		block, _ := pem.Decode([]byte(pemCert))
		if block == nil {
			return nil, fmt.Errorf("cert %s: no PEM block", kid)
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("cert %s: %w", kid, err)
		}
		pub, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("cert %s: not an RSA key", kid)
		}
		keys[kid] = pub
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no signing certificates at %s", certsURL)
	}
	return keys, nil
}

// Verify parses and validates an ID token: RS256 signature against a loaded
// certificate, audience equal to the project ID, and the provider's issuer.
func (v *Verifier) Verify(token string) (Claims, error) {
	if !v.Available() {
		return nil, fmt.Errorf("verifier unavailable")
	}
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, v.keyFor,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.ProjectID),
		jwt.WithIssuer("https://securetoken.google.com/"+v.ProjectID),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func (v *Verifier) keyFor(token *jwt.Token) (interface{}, error) {
	kid, _ := token.Header["kid"].(string)
	v.mu.RLock()
	defer v.mu.RUnlock()
	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key id %q", kid)
	}
	return key, nil
}

// ClaimsFromRequest returns the decoded claims for the request's bearer
// token, or nil when verification is unavailable, the Authorization header
// is missing or malformed, or the token does not verify. Errors are never
// surfaced; the contract is fail closed to anonymous.
func (v *Verifier) ClaimsFromRequest(r *http.Request) Claims {
	if !v.Available() {
		return nil
	}
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	token := strings.TrimPrefix(header, "Bearer ")
	claims, err := v.Verify(token)
	if err != nil {
		return nil
	}
	return claims
}
