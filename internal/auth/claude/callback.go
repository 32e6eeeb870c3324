package claude

import (
	"net/url"
	"regexp"
	"strings"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// minimum plausible length for a pasted authorization code
const minCodeLength = 10

// ExtractAuthorizationCode pulls an authorization code out of whatever the
// user pasted after consenting in the browser. Two shapes are accepted: a
// full callback URL, from which the code query parameter is taken, and a
// bare code, which is cleaned of any trailing fragment or query text.
// Failures are *ValidationError values with a branchable Kind.
func ExtractAuthorizationCode(rawInput string) (string, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", newValidationError(KindInvalidInput, "provide a valid authorization code or callback URL")
	}

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		parsedURL, err := url.Parse(trimmed)
		if err != nil {
			return "", newValidationError(KindMalformedURL, "invalid URL format, check that the callback URL is complete")
		}
		code := parsedURL.Query().Get("code")
		if code == "" {
			return "", newValidationError(KindMissingCode, "callback URL carries no authorization code (code parameter)")
		}
		return code, nil
	}

	cleaned := cleanRawCode(trimmed)
	if len(cleaned) < minCodeLength {
		return "", newValidationError(KindInvalidFormat, "authorization code is too short, make sure the full code was copied")
	}
	if !codePattern.MatchString(cleaned) {
		return "", newValidationError(KindInvalidCharacters, "authorization code contains invalid characters")
	}
	return cleaned, nil
}

// cleanRawCode strips a pasted code of URL leftovers: the fragment first,
// then anything after a query separator. The order matters for inputs like
// "code#frag&x=1".
func cleanRawCode(code string) string {
	if idx := strings.Index(code, "#"); idx >= 0 {
		code = code[:idx]
	}
	if idx := strings.Index(code, "&"); idx >= 0 {
		code = code[:idx]
	}
	return code
}
