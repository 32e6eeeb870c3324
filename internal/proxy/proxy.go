// Package proxy models the user-supplied forward proxy that every OAuth
// request is routed through. It validates proxy parameters, synthesizes the
// connection URL handed to the HTTP transport, and renders display-safe
// descriptions that never leak credentials into logs or terminal output.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	xproxy "golang.org/x/net/proxy"
)

// Supported proxy schemes.
const (
	SchemeSOCKS5 = "socks5"
	SchemeHTTP   = "http"
	SchemeHTTPS  = "https"
)

// Spec describes a forward proxy endpoint. Username and password are only
// meaningful when both are non-empty; a lone username or lone password is
// treated as "no credentials". A Spec is never mutated after construction.
type Spec struct {
	Scheme   string `json:"scheme" yaml:"scheme"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// UnmarshalJSON accepts the port either as a JSON number or as a numeric
// string, since hand-edited auth files and prompt input both occur in the
// wild. A non-numeric port decodes to 0 and is rejected by Validate.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Scheme   string `json:"scheme"`
		Host     string `json:"host"`
		Port     any    `json:"port"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Scheme = raw.Scheme
	s.Host = raw.Host
	s.Username = raw.Username
	s.Password = raw.Password
	s.Port = 0
	switch v := raw.Port.(type) {
	case float64:
		s.Port = int(v)
	case string:
		if port, ok := ParsePort(v); ok {
			s.Port = port
		}
	}
	return nil
}

// ParsePort parses a textual port and reports whether it is a valid TCP
// port in [1, 65535].
func ParsePort(value string) (int, bool) {
	port, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || port < 1 || port > 65535 {
		return 0, false
	}
	return port, true
}

// Validate reports whether the spec carries a supported scheme, a non-empty
// host, and a port within [1, 65535].
func (s *Spec) Validate() bool {
	if s == nil {
		return false
	}
	switch s.Scheme {
	case SchemeSOCKS5, SchemeHTTP, SchemeHTTPS:
	default:
		return false
	}
	if strings.TrimSpace(s.Host) == "" {
		return false
	}
	return s.Port >= 1 && s.Port <= 65535
}

// hasAuth reports whether both credential fields are present.
func (s *Spec) hasAuth() bool {
	return s != nil && s.Username != "" && s.Password != ""
}

// ConnectURL builds the proxy connection URL, or "" when the spec is
// invalid. SOCKS5 deliberately emits the socks5h variant so hostname
// resolution happens on the proxy side and the token endpoint hostname
// never reaches the local resolver; do not generalize this to the HTTP
// schemes.
func (s *Spec) ConnectURL() string {
	if !s.Validate() {
		return ""
	}
	auth := ""
	if s.hasAuth() {
		auth = encodeCredential(s.Username) + ":" + encodeCredential(s.Password) + "@"
	}
	scheme := s.Scheme
	if scheme == SchemeSOCKS5 {
		scheme = "socks5h"
	}
	return fmt.Sprintf("%s://%s%s:%d", scheme, auth, s.Host, s.Port)
}

// Redacted renders the proxy for logs and status output. Credentials are
// masked: the username keeps its first and last character, the password is
// replaced by at most eight mask characters so its true length beyond that
// is not disclosed.
func (s *Spec) Redacted() string {
	if s == nil {
		return "No proxy"
	}
	if !s.Validate() {
		return "Invalid proxy config"
	}
	desc := fmt.Sprintf("%s://%s:%d", s.Scheme, s.Host, s.Port)
	if s.hasAuth() {
		desc += fmt.Sprintf(" (auth: %s:%s)", maskUsername(s.Username), maskPassword(s.Password))
	}
	return desc
}

// ShortDescription is like Redacted but collapses credentials to a constant
// "(with auth)" marker for compact display contexts.
func (s *Spec) ShortDescription() string {
	if s == nil {
		return "No proxy"
	}
	if !s.Validate() {
		return "Invalid proxy config"
	}
	suffix := ""
	if s.hasAuth() {
		suffix = " (with auth)"
	}
	return fmt.Sprintf("%s://%s:%d%s", s.Scheme, s.Host, s.Port, suffix)
}

// Transport builds an http.Transport that routes both http and https
// targets through the proxy. SOCKS5 uses a dialer that passes the target
// hostname to the proxy (remote DNS); HTTP(S) proxies go through the
// standard CONNECT path.
func (s *Spec) Transport() (*http.Transport, error) {
	connectURL := s.ConnectURL()
	if connectURL == "" {
		return nil, fmt.Errorf("invalid proxy config")
	}
	proxyURL, err := url.Parse(connectURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	switch proxyURL.Scheme {
	case "socks5", "socks5h":
		var proxyAuth *xproxy.Auth
		if proxyURL.User != nil {
			username := proxyURL.User.Username()
			password, _ := proxyURL.User.Password()
			proxyAuth = &xproxy.Auth{User: username, Password: password}
		}
		dialer, errSOCKS5 := xproxy.SOCKS5("tcp", proxyURL.Host, proxyAuth, xproxy.Direct)
		if errSOCKS5 != nil {
			return nil, fmt.Errorf("create SOCKS5 dialer failed: %w", errSOCKS5)
		}
		return &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}, nil
	default:
		return &http.Transport{Proxy: http.ProxyURL(proxyURL)}, nil
	}
}

func maskUsername(username string) string {
	if len(username) <= 2 {
		return username
	}
	masked := len(username) - 2
	if masked < 1 {
		masked = 1
	}
	return username[:1] + strings.Repeat("*", masked) + username[len(username)-1:]
}

func maskPassword(password string) string {
	n := len(password)
	if n > 8 {
		n = 8
	}
	return strings.Repeat("*", n)
}

// encodeCredential percent-encodes a userinfo component so that reserved
// characters like '@' and ':' survive embedding in the URL authority.
func encodeCredential(value string) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
			c == '-' || c == '_' || c == '.' || c == '~' {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}
