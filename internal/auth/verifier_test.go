package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testProject = "demo-project"

// newTestVerifier spins up a certificate endpoint backed by a fresh RSA key
// and returns an initialized verifier plus the signing key.
func newTestVerifier(t *testing.T) (*Verifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	pemCert := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"test-kid": string(pemCert)})
	}))
	t.Cleanup(srv.Close)

	v := &Verifier{ProjectID: testProject, CertsURL: srv.URL}
	res, err := v.Init(context.Background())
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if res != InitInitialized {
		t.Fatalf("expected initialized, got %v", res)
	}
	return v, key
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = "test-kid"
	signed, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"aud": testProject,
		"iss": "https://securetoken.google.com/" + testProject,
		"sub": "user-1",
		"iat": time.Now().Add(-time.Minute).Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
}

func TestInit_SkippedWithoutProject(t *testing.T) {
	v := &Verifier{}
	res, err := v.Init(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != InitSkipped {
		t.Fatalf("expected skipped, got %v", res)
	}
	if v.Available() {
		t.Fatalf("expected verifier unavailable")
	}
}

func TestInit_FailedOnBadEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	v := &Verifier{ProjectID: testProject, CertsURL: srv.URL}
	res, err := v.Init(context.Background())
	if res != InitFailed || err == nil {
		t.Fatalf("expected failed init with error, got %v, %v", res, err)
	}
}

func TestVerify_GoodToken(t *testing.T) {
	v, key := newTestVerifier(t)
	claims, err := v.Verify(signToken(t, key, validClaims()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims["sub"] != "user-1" {
		t.Fatalf("expected sub claim, got %v", claims)
	}
}

func TestVerify_WrongAudience(t *testing.T) {
	v, key := newTestVerifier(t)
	c := validClaims()
	c["aud"] = "some-other-project"
	if _, err := v.Verify(signToken(t, key, c)); err == nil {
		t.Fatalf("expected audience error")
	}
}

func TestVerify_Expired(t *testing.T) {
	v, key := newTestVerifier(t)
	c := validClaims()
	c["exp"] = time.Now().Add(-time.Hour).Unix()
	if _, err := v.Verify(signToken(t, key, c)); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestVerify_WrongKey(t *testing.T) {
	v, _ := newTestVerifier(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if _, err := v.Verify(signToken(t, other, validClaims())); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestClaimsFromRequest_FailsClosed(t *testing.T) {
	v, key := newTestVerifier(t)

	cases := map[string]string{
		"no header":     "",
		"not bearer":    "Basic abc123",
		"garbage token": "Bearer not.a.token",
		"empty bearer":  "Bearer ",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if got := v.ClaimsFromRequest(req); got != nil {
			t.Fatalf("%s: expected nil claims, got %v", name, got)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, key, validClaims()))
	if got := v.ClaimsFromRequest(req); got == nil {
		t.Fatalf("expected claims for valid token")
	}
}

func TestClaimsFromRequest_UnavailableVerifier(t *testing.T) {
	v := &Verifier{ProjectID: testProject}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	if got := v.ClaimsFromRequest(req); got != nil {
		t.Fatalf("expected nil claims when uninitialized, got %v", got)
	}
}
