package claude

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
)

// Params bundles everything a single authorization attempt needs. The code
// verifier must be retained by the caller until token exchange; the code
// challenge is only ever used in the one authorize request it was generated
// for.
type Params struct {
	// State is the CSRF token embedded in the authorize URL.
	State string `json:"state"`
	// CodeVerifier is the client-held PKCE secret.
	CodeVerifier string `json:"code_verifier"`
	// CodeChallenge is the S256 digest of the verifier.
	CodeChallenge string `json:"code_challenge"`
	// AuthorizeURL is the fully qualified URL to open in a browser.
	AuthorizeURL string `json:"authorize_url"`
}

// GenerateState creates a cryptographically random, URL-safe state token.
func GenerateState() (string, error) {
	return randomToken()
}

// GenerateCodeVerifier creates a cryptographically random, URL-safe PKCE
// code verifier following RFC 7636.
func GenerateCodeVerifier() (string, error) {
	return randomToken()
}

// randomToken returns 32 random bytes as unpadded URL-safe base64,
// 43 characters over the [A-Za-z0-9_-] alphabet.
func randomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// CodeChallenge derives the S256 code challenge: the SHA-256 digest of the
// verifier's raw bytes, URL-safe base64 encoded with padding stripped.
func CodeChallenge(codeVerifier string) string {
	hash := sha256.Sum256([]byte(codeVerifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// BuildAuthorizeURL constructs the authorize endpoint URL embedding the
// PKCE challenge and state. Client id, redirect URI, and scope are fixed
// configuration, not caller input.
func BuildAuthorizeURL(codeChallenge, state string) string {
	params := url.Values{
		"code":                  {"true"},
		"client_id":             {ClientID},
		"response_type":         {"code"},
		"redirect_uri":          {RedirectURI},
		"scope":                 {Scopes},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {"S256"},
		"state":                 {state},
	}
	return fmt.Sprintf("%s?%s", AuthorizeURL, params.Encode())
}

// GenerateParams produces a fresh state, verifier, challenge, and authorize
// URL for one authorization attempt.
func GenerateParams() (*Params, error) {
	state, err := GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	codeVerifier, err := GenerateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	codeChallenge := CodeChallenge(codeVerifier)
	return &Params{
		State:         state,
		CodeVerifier:  codeVerifier,
		CodeChallenge: codeChallenge,
		AuthorizeURL:  BuildAuthorizeURL(codeChallenge, state),
	}, nil
}
