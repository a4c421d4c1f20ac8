package insightclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func server(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.CloseClientConnections()
		srv.Close()
	})
	return srv
}

func newClient(srv *httptest.Server, opts ...Option) *Client {
	// Keep-alive connections would outlive the test and trip goleak.
	hc := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}
	return New(srv.URL, append([]Option{WithHTTPClient(hc)}, opts...)...)
}

func TestCanonicalType(t *testing.T) {
	cases := map[string]string{
		"image/jpg":       "image/jpeg",
		"IMAGE/PNG":       "image/png",
		"image/webp; q=1": "image/webp",
		"image/heic":      "image/jpeg",
		"image/gif":       "image/gif",
	}
	for in, want := range cases {
		got, err := CanonicalType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := CanonicalType("application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestAnalyzeRejectsTypeWithoutRequest(t *testing.T) {
	called := false
	srv := server(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := newClient(srv).Analyze(context.Background(), "a.pdf", "application/pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.False(t, called)
}

func TestAnalyzeSuccess(t *testing.T) {
	srv := server(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analyze-document", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "image/jpeg", body["mimeType"])
		assert.Equal(t, "aGk=", body["fileContentBase64"])

		_, _ = w.Write([]byte(`{"success":true,"data":{"provider":"SAICA","cpdHours":2}}`))
	})

	data, err := newClient(srv, WithToken("tok")).Analyze(context.Background(), "c.jpg", "image/jpg", []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "SAICA", data["provider"])
	assert.Equal(t, 2.0, data["cpdHours"])
}

func TestStatusErrorCarriesServerMessage(t *testing.T) {
	srv := server(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":false,"error":"external service error","details":"vision model unavailable"}`))
	})

	_, err := newClient(srv).Chat(context.Background(), "hi")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "vision model unavailable", se.Message)
}

func TestStatusErrorWithoutBody(t *testing.T) {
	srv := server(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := newClient(srv).Chat(context.Background(), "hi")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Empty(t, se.Message)
}

func TestFailureInSuccessfulReply(t *testing.T) {
	srv := server(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"Message is required"}`))
	})

	_, err := newClient(srv).Chat(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorContains(t, err, "Message is required")
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestWithTimeoutLeavesCallerClientAlone(t *testing.T) {
	hc := &http.Client{Timeout: 5 * time.Second}
	c := New("http://example.invalid", WithHTTPClient(hc), WithTimeout(time.Second))

	assert.Equal(t, 5*time.Second, hc.Timeout)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
	assert.NotSame(t, hc, c.httpClient)
}

func TestMalformedResponses(t *testing.T) {
	bodies := []string{
		`not json`,
		`{"success":false}`,
		`{"success":true}`,
	}
	for _, b := range bodies {
		srv := server(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(b))
		})
		_, err := newClient(srv).Analyze(context.Background(), "c.png", "image/png", []byte("x"))
		assert.ErrorIs(t, err, ErrMalformedResponse, b)
	}
}

func TestNetworkError(t *testing.T) {
	srv := server(t, func(w http.ResponseWriter, r *http.Request) {})
	c := newClient(srv)
	srv.Close()

	_, err := c.Chat(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.False(t, errors.Is(err, ErrMalformedResponse))
}

func TestTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := server(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c := newClient(srv, WithTimeout(50*time.Millisecond))
	_, err := c.Chat(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestChatSuccess(t *testing.T) {
	srv := server(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"response":"Keep going."}`))
	})

	reply, err := newClient(srv).Chat(context.Background(), "How am I doing?")
	require.NoError(t, err)
	assert.Equal(t, "Keep going.", reply)
}
