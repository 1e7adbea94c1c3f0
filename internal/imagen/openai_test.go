package imagen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thamizhmedia/velpari-studio/internal/config"
	"github.com/thamizhmedia/velpari-studio/internal/retry"
)

func openAITestConfig() *config.Config {
	return &config.Config{
		OpenAI: config.OpenAI{Model: "dall-e-3", Size: "1792x1024", Quality: "standard"},
		TTS:    config.TTS{Timeout: 5 * time.Second},
	}
}

func TestOpenAIGenerateDecodesBase64(t *testing.T) {
	raw := []byte("png-bytes")
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req["prompt"] != "A hill fort." {
			t.Errorf("prompt mismatch: %v", req["prompt"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"b64_json": base64.StdEncoding.EncodeToString(raw)},
			},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider(openAITestConfig())
	p.baseURL = server.URL
	p.apiKey = "sk-test"

	img, err := p.Generate(context.Background(), "A hill fort.", "1792x1024", "standard")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if string(img) != "png-bytes" {
		t.Errorf("image mismatch: %q", img)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
}

func TestOpenAIGenerateDownloadsURL(t *testing.T) {
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hosted-image"))
	}))
	defer imageServer.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": imageServer.URL + "/img.png"}},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider(openAITestConfig())
	p.baseURL = server.URL

	img, err := p.Generate(context.Background(), "prompt", "1024x1024", "standard")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if string(img) != "hosted-image" {
		t.Errorf("image mismatch: %q", img)
	}
}

func TestOpenAIRateLimitIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewOpenAIProvider(openAITestConfig())
	p.baseURL = server.URL

	_, err := p.Generate(context.Background(), "prompt", "1024x1024", "standard")
	var te *retry.TransientError
	if !errors.As(err, &te) {
		t.Fatalf("expected *retry.TransientError, got %v", err)
	}
}

func TestOpenAIContentPolicyIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "content policy violation", "type": "invalid_request_error"},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider(openAITestConfig())
	p.baseURL = server.URL

	_, err := p.Generate(context.Background(), "prompt", "1024x1024", "standard")
	if err == nil {
		t.Fatal("expected error for 400")
	}
	var te *retry.TransientError
	if errors.As(err, &te) {
		t.Errorf("400 must not be transient: %v", err)
	}
}
