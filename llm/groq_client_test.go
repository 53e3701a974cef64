package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroqClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","choices":[{"index":0,"message":{"role":"assistant","content":"Bonjour !"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client := NewOpenAICompatClient(server.URL, "test-key", "test-model")

	var out strings.Builder
	err := client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "salut"}},
		func(chunk string) error {
			out.WriteString(chunk)
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, "Bonjour !", out.String())
}

func TestGroqClientStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"Bon\"}}]}\n\n"))
		w.Write([]byte(": keep-alive comment\n\n"))
		w.Write([]byte("data: not-json\n\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"jour\"}}]}\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	client := NewOpenAICompatClient(server.URL, "test-key", "test-model")

	var chunks []string
	err := client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "salut"}},
		func(chunk string) error {
			chunks = append(chunks, chunk)
			return nil
		},
		WithStreaming(true))

	require.NoError(t, err)
	assert.Equal(t, []string{"Bon", "jour"}, chunks)
}

func TestGroqClientStatusKinds(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, KindInvalidCredentials},
		{http.StatusForbidden, KindInvalidCredentials},
		{http.StatusTooManyRequests, KindQuotaExhausted},
		{http.StatusInternalServerError, KindModelUnavailable},
		{http.StatusNotFound, KindTransportError},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		client := NewOpenAICompatClient(server.URL, "test-key", "test-model")
		err := client.GenerateInference(context.Background(),
			[]Message{{Role: "user", Content: "salut"}},
			func(string) error { return nil })

		require.Error(t, err, "status %d", tc.status)
		assert.Equal(t, tc.kind, KindOf(err), "status %d", tc.status)
		server.Close()
	}
}

func TestGroqClientMissingKey(t *testing.T) {
	client := NewOpenAICompatClient("http://localhost:1", "", "test-model")

	err := client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "salut"}},
		func(string) error { return nil })

	require.Error(t, err)
	assert.Equal(t, KindInvalidCredentials, KindOf(err))
}

func TestLoadRoleConfigDefaults(t *testing.T) {
	config, err := LoadRoleConfig("")
	require.NoError(t, err)

	for _, role := range Roles() {
		chain, ok := config[role]
		require.True(t, ok, "role %s missing from defaults", role)
		assert.NotEmpty(t, chain.Primary.Name)
	}
}
