package claude

import (
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"
	"testing"
)

var tokenAlphabet = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestGeneratedTokensAreURLSafeAndUnique(t *testing.T) {
	t.Parallel()

	generators := map[string]func() (string, error){
		"state":    GenerateState,
		"verifier": GenerateCodeVerifier,
	}
	for name, generate := range generators {
		name, generate := name, generate
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			first, err := generate()
			if err != nil {
				t.Fatalf("generate failed: %v", err)
			}
			second, err := generate()
			if err != nil {
				t.Fatalf("generate failed: %v", err)
			}
			if len(first) < 32 {
				t.Errorf("token length = %d, want >= 32", len(first))
			}
			if !tokenAlphabet.MatchString(first) {
				t.Errorf("token %q contains characters outside [A-Za-z0-9_-]", first)
			}
			if strings.ContainsRune(first, '=') {
				t.Errorf("token %q contains padding", first)
			}
			if first == second {
				t.Error("two consecutive generations produced the same token")
			}
		})
	}
}

func TestCodeChallenge(t *testing.T) {
	t.Parallel()

	verifier := "test-verifier-value-1234567890"
	challenge := CodeChallenge(verifier)

	if len(challenge) != 43 {
		t.Errorf("challenge length = %d, want 43", len(challenge))
	}
	if !tokenAlphabet.MatchString(challenge) {
		t.Errorf("challenge %q is not URL-safe", challenge)
	}

	hash := sha256.Sum256([]byte(verifier))
	want := base64.RawURLEncoding.EncodeToString(hash[:])
	if challenge != want {
		t.Errorf("challenge = %q, want %q", challenge, want)
	}

	if CodeChallenge(verifier) != challenge {
		t.Error("same verifier must always yield the same challenge")
	}
	if CodeChallenge(verifier+"x") == challenge {
		t.Error("different verifiers must yield different challenges")
	}
}

func TestBuildAuthorizeURLRoundTrip(t *testing.T) {
	t.Parallel()

	challenge := CodeChallenge("another-verifier-for-url-test")
	state := "state-token-abc123"

	authorizeURL := BuildAuthorizeURL(challenge, state)
	parsed, err := url.Parse(authorizeURL)
	if err != nil {
		t.Fatalf("authorize URL does not parse: %v", err)
	}
	if got := parsed.Scheme + "://" + parsed.Host + parsed.Path; got != AuthorizeURL {
		t.Errorf("authorize endpoint = %q, want %q", got, AuthorizeURL)
	}

	query := parsed.Query()
	want := map[string]string{
		"code":                  "true",
		"client_id":             ClientID,
		"response_type":         "code",
		"redirect_uri":          RedirectURI,
		"scope":                 Scopes,
		"code_challenge":        challenge,
		"code_challenge_method": "S256",
		"state":                 state,
	}
	for key, value := range want {
		if got := query.Get(key); got != value {
			t.Errorf("query %s = %q, want %q", key, got, value)
		}
	}
}

func TestGenerateParams(t *testing.T) {
	t.Parallel()

	params, err := GenerateParams()
	if err != nil {
		t.Fatalf("GenerateParams failed: %v", err)
	}
	if params.CodeChallenge != CodeChallenge(params.CodeVerifier) {
		t.Error("challenge does not match verifier")
	}

	parsed, err := url.Parse(params.AuthorizeURL)
	if err != nil {
		t.Fatalf("authorize URL does not parse: %v", err)
	}
	query := parsed.Query()
	if query.Get("code_challenge") != params.CodeChallenge {
		t.Error("authorize URL does not embed the generated challenge")
	}
	if query.Get("state") != params.State {
		t.Error("authorize URL does not embed the generated state")
	}
}
