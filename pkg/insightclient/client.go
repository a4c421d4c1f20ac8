// Package insightclient calls a CPD tracker server's document-analysis and
// chat endpoints.
package insightclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultTimeout = 60 * time.Second

var (
	// ErrUnsupportedType is returned before any request is sent.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrNetwork wraps transport failures: DNS, refused connections, timeouts.
	ErrNetwork = errors.New("network error")
	// ErrMalformedResponse means the body could not be understood.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrRequestFailed is a 2xx reply whose body says success:false. The
	// wrapped text is the server's message.
	ErrRequestFailed = errors.New("request failed")
)

// StatusError is a non-2xx reply. Message is the server's error text when
// it sent one. Only non-2xx replies produce it.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

var supported = map[string]string{
	"image/jpeg": "image/jpeg",
	"image/jpg":  "image/jpeg",
	"image/png":  "image/png",
	"image/gif":  "image/gif",
	"image/webp": "image/webp",
}

// CanonicalType maps a declared mime type onto the whitelist. Unknown image
// types are sent as image/jpeg; anything else is rejected.
func CanonicalType(mime string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	if c, ok := supported[m]; ok {
		return c, nil
	}
	if strings.HasPrefix(m, "image/") {
		return "image/jpeg", nil
	}
	return "", fmt.Errorf("%w: %q; upload a JPG, PNG, GIF or WebP image", ErrUnsupportedType, mime)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithToken sends the bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout on a copy of the HTTP client, so a
// client passed through WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the shape of every reply from the two endpoints.
type envelope struct {
	Success  *bool           `json:"success"`
	Data     json.RawMessage `json:"data"`
	Response *string         `json:"response"`
	Error    string          `json:"error"`
	Message  string          `json:"message"`
	Details  string          `json:"details"`
}

func (e envelope) text() string {
	for _, s := range []string{e.Details, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Analyze sends an image for extraction and returns the decoded object. A
// reply the model could not structure comes back as {"rawResponse": text}.
func (c *Client) Analyze(ctx context.Context, fileName, mimeType string, content []byte) (map[string]any, error) {
	canonical, err := CanonicalType(mimeType)
	if err != nil {
		return nil, err
	}
	body := map[string]string{
		"fileContentBase64": base64.StdEncoding.EncodeToString(content),
		"fileName":          fileName,
		"mimeType":          canonical,
	}
	env, err := c.post(ctx, "/api/analyze-document", body)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if len(env.Data) == 0 || json.Unmarshal(env.Data, &data) != nil || data == nil {
		return nil, fmt.Errorf("%w: missing data object", ErrMalformedResponse)
	}
	return data, nil
}

func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	env, err := c.post(ctx, "/api/chat", map[string]string{"message": message})
	if err != nil {
		return "", err
	}
	if env.Response == nil {
		return "", fmt.Errorf("%w: missing response", ErrMalformedResponse)
	}
	return *env.Response, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*envelope, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(payload, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			se.Message = env.text()
		}
		return nil, se
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, decodeErr)
	}
	if env.Success != nil && !*env.Success {
		if msg := env.text(); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrRequestFailed, msg)
		}
		return nil, fmt.Errorf("%w: request failed without a message", ErrMalformedResponse)
	}
	return &env, nil
}
