package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aridelmo/argus/internal/waf"
)

func TestClient_AnalyzeBlockVerdict(t *testing.T) {
	var got analyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/analyze", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"allow": false, "reason": "xss", "auto_learned_rule": "(?i)xss_pattern", "score": 0.97}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	verdict, err := client.Analyze(context.Background(), waf.AnalysisRequest{
		Method: "POST", Path: "/comment", Protocol: "HTTP/1.1", Body: "<script>alert(1)</script>",
	})
	require.NoError(t, err)

	assert.False(t, verdict.Allow)
	assert.Equal(t, "xss", verdict.Reason)
	assert.Equal(t, "(?i)xss_pattern", verdict.LearnedRule)
	require.NotNil(t, verdict.Score)
	assert.InDelta(t, 0.97, *verdict.Score, 1e-9)
	assert.Equal(t, "<script>alert(1)</script>", got.Body)
}

func TestClient_AnalyzeArgsReplaceBody(t *testing.T) {
	var got analyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"allow": true, "reason": "ok"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Analyze(context.Background(), waf.AnalysisRequest{
		Method: "GET", Path: "/search?q=hello", Body: "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, "q=hello", got.Body)
}

func TestClient_AnalyzeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 20*time.Millisecond)
	_, err := client.Analyze(context.Background(), waf.AnalysisRequest{Method: "GET", Path: "/"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_AnalyzeConnectFailure(t *testing.T) {
	// Nothing listens on this port.
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := client.Analyze(context.Background(), waf.AnalysisRequest{Method: "GET", Path: "/"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Analyze5xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Analyze(context.Background(), waf.AnalysisRequest{Method: "GET", Path: "/"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_AnalyzeMalformedVerdict(t *testing.T) {
	cases := map[string]string{
		"not json":      `<html>busy</html>`,
		"missing allow": `{"reason": "??"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, time.Second)
			_, err := client.Analyze(context.Background(), waf.AnalysisRequest{Method: "GET", Path: "/"})
			assert.ErrorIs(t, err, ErrMalformedVerdict)
		})
	}
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			_, _ = w.Write([]byte(`{"status": "healthy"}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	assert.NoError(t, client.Ping(context.Background()))

	srv.Close()
	assert.ErrorIs(t, client.Ping(context.Background()), ErrUnavailable)
}
