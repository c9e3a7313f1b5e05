// Package signer produces the HMAC request signatures expected by the
// exchange's authenticated REST API.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Header names carried by every authenticated request.
const (
	HeaderTimestamp  = "CB-ACCESS-TIMESTAMP"
	HeaderSignature  = "CB-ACCESS-SIGN"
	HeaderPassphrase = "CB-ACCESS-PASSPHRASE"
	HeaderKey        = "CB-ACCESS-KEY"
)

// Request is the part of an HTTP call that is covered by the signature.
type Request struct {
	Timestamp string
	Method    string
	Path      string
	Body      string
}

// Message returns the canonical string both sides hash:
// timestamp + METHOD + path + body.
func (r Request) Message() string {
	var b strings.Builder
	b.Grow(len(r.Timestamp) + len(r.Method) + len(r.Path) + len(r.Body))
	b.WriteString(r.Timestamp)
	b.WriteString(strings.ToUpper(r.Method))
	b.WriteString(r.Path)
	b.WriteString(r.Body)
	return b.String()
}

// Signer holds the decoded HMAC key and the plaintext identifiers.
type Signer struct {
	key        []byte
	apiKey     string
	passphrase string
	now        func() time.Time
}

// Option customises a Signer.
type Option func(*Signer)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// New decodes the base64 secret up front so a malformed secret is reported
// as a SigningError before anything is sent.
func New(apiKey, secret, passphrase string, opts ...Option) (*Signer, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(secret))
	if err != nil {
		return nil, &SigningError{Reason: "api secret is not valid base64", Err: err}
	}
	if len(key) == 0 {
		return nil, &SigningError{Reason: "api secret is empty"}
	}

	s := &Signer{
		key:        key,
		apiKey:     apiKey,
		passphrase: passphrase,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Timestamp returns the current time as whole Unix seconds.
func (s *Signer) Timestamp() string {
	return strconv.FormatInt(s.now().Unix(), 10)
}

// Sign returns the base64 HMAC-SHA256 of the request's canonical message.
func (s *Signer) Sign(r Request) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(r.Message()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Headers signs r and returns the four authentication headers.
func (s *Signer) Headers(r Request) http.Header {
	h := make(http.Header, 4)
	h.Set(HeaderTimestamp, r.Timestamp)
	h.Set(HeaderSignature, s.Sign(r))
	h.Set(HeaderPassphrase, s.passphrase)
	h.Set(HeaderKey, s.apiKey)
	return h
}

// Apply stamps req with a fresh timestamp and its signature. body must be
// the exact payload that will be sent, or "" for none. Call it immediately
// before sending: the server rejects stale timestamps.
func (s *Signer) Apply(req *http.Request, body string) Request {
	r := Request{
		Timestamp: s.Timestamp(),
		Method:    req.Method,
		Path:      req.URL.Path,
		Body:      body,
	}
	for k, v := range s.Headers(r) {
		req.Header[k] = v
	}
	return r
}
