package openrouter_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/JaimeStill/curioscore/pkg/openrouter"
)

func newClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*openrouter.Config)) *openrouter.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := openrouter.Config{
		APIKey:       "test-key",
		URL:          server.URL + "/api/v1/chat/completions",
		Model:        "test/model",
		Temperature:  0.3,
		Timeout:      "5s",
		RetryWait:    "1ms",
		RetryMaxWait: "5ms",
		SiteName:     "curioscore-test",
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	return openrouter.New(&cfg)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestCompleteSendsWireFormat(t *testing.T) {
	var captured map[string]any
	var auth, title string

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/chat/completions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		title = r.Header.Get("X-Title")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeJSON(w, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"{}"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15},"total_cost":0.002}`)
	})

	resp, err := client.Complete(context.Background(), openrouter.Request{
		Messages: []openrouter.Message{{Role: "user", Content: "hello"}},
		ResponseFormat: &openrouter.ResponseFormat{
			Type: "json_schema",
			JSONSchema: &openrouter.JSONSchema{
				Name:   "curio_scoring",
				Strict: true,
				Schema: map[string]any{"type": "object"},
			},
		},
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	if auth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want Bearer test-key", auth)
	}
	if title != "curioscore-test" {
		t.Errorf("X-Title = %q, want curioscore-test", title)
	}
	if captured["model"] != "test/model" {
		t.Errorf("model = %v, want test/model", captured["model"])
	}
	if captured["temperature"] != 0.3 {
		t.Errorf("temperature = %v, want 0.3", captured["temperature"])
	}
	if _, ok := captured["plugins"]; ok {
		t.Error("plugins should be omitted when web search is disabled")
	}

	rf, ok := captured["response_format"].(map[string]any)
	if !ok || rf["type"] != "json_schema" {
		t.Fatalf("response_format = %v, want json_schema", captured["response_format"])
	}
	js := rf["json_schema"].(map[string]any)
	if js["name"] != "curio_scoring" || js["strict"] != true {
		t.Errorf("json_schema = %v", js)
	}

	if resp.Content() != "{}" {
		t.Errorf("Content() = %q, want {}", resp.Content())
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Errorf("Usage = %+v, want total 15", resp.Usage)
	}
	if resp.TotalCost == nil || *resp.TotalCost != 0.002 {
		t.Errorf("TotalCost = %v, want 0.002", resp.TotalCost)
	}
}

func TestCompleteWebSearchPlugin(t *testing.T) {
	var captured struct {
		Plugins []openrouter.Plugin `json:"plugins"`
	}

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		writeJSON(w, http.StatusOK, `{"choices":[]}`)
	}, func(c *openrouter.Config) {
		c.WebSearch = true
		c.WebMaxResults = 4
	})

	if _, err := client.Complete(context.Background(), openrouter.Request{}); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	if len(captured.Plugins) != 1 || captured.Plugins[0].ID != "web" || captured.Plugins[0].MaxResults != 4 {
		t.Errorf("plugins = %+v, want [{web 4}]", captured.Plugins)
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"error key with 200", http.StatusOK, `{"error":{"code":402,"message":"insufficient credits"}}`, openrouter.ErrAPI},
		{"error key with 400", http.StatusBadRequest, `{"error":{"code":400,"message":"bad schema"}}`, openrouter.ErrAPI},
		{"plain non-2xx", http.StatusUnauthorized, `unauthorized`, openrouter.ErrStatus},
		{"undecodable 200", http.StatusOK, `<html>`, openrouter.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := client.Complete(context.Background(), openrouter.Request{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompleteRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusTooManyRequests, `{}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	}, func(c *openrouter.Config) {
		c.MaxRetries = 3
	})

	resp, err := client.Complete(context.Background(), openrouter.Request{})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if resp.Content() != "ok" {
		t.Errorf("Content() = %q, want ok", resp.Content())
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestCompleteRetriesExhausted(t *testing.T) {
	var calls atomic.Int32

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadGateway, `upstream down`)
	}, func(c *openrouter.Config) {
		c.MaxRetries = 2
	})

	_, err := client.Complete(context.Background(), openrouter.Request{})
	if !errors.Is(err, openrouter.ErrStatus) {
		t.Errorf("error = %v, want ErrStatus", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3 (1 + 2 retries)", got)
	}
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadRequest, `{"error":{"message":"bad"}}`)
	}, func(c *openrouter.Config) {
		c.MaxRetries = 3
	})

	client.Complete(context.Background(), openrouter.Request{})
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestResponseContentNoChoices(t *testing.T) {
	r := &openrouter.Response{}
	if r.Content() != "" {
		t.Errorf("Content() = %q, want empty", r.Content())
	}
}

func TestConfigFinalize(t *testing.T) {
	env := &openrouter.Env{
		APIKey:         "TEST_OR_KEY",
		Model:          "TEST_OR_MODEL",
		Temperature:    "TEST_OR_TEMPERATURE",
		TimeoutSeconds: "TEST_OR_TIMEOUT_S",
		MaxRetries:     "TEST_OR_MAX_RETRIES",
	}

	t.Run("defaults", func(t *testing.T) {
		var c openrouter.Config
		if err := c.Finalize(env); err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		if c.URL != openrouter.DefaultURL {
			t.Errorf("URL = %q", c.URL)
		}
		if c.Temperature != openrouter.DefaultTemperature {
			t.Errorf("Temperature = %v", c.Temperature)
		}
		if c.TimeoutDuration().Seconds() != 180 {
			t.Errorf("Timeout = %v, want 180s", c.TimeoutDuration())
		}
		if c.MaxRetries != openrouter.DefaultMaxRetries {
			t.Errorf("MaxRetries = %d", c.MaxRetries)
		}
		if c.APIKey != "" {
			t.Errorf("APIKey = %q, want empty", c.APIKey)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_OR_KEY", "sk-live")
		t.Setenv("TEST_OR_MODEL", "qwen/qwen3-coder:free")
		t.Setenv("TEST_OR_TEMPERATURE", "0.5")
		t.Setenv("TEST_OR_TIMEOUT_S", "60")
		t.Setenv("TEST_OR_MAX_RETRIES", "0")

		var c openrouter.Config
		if err := c.Finalize(env); err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		if c.APIKey != "sk-live" || c.Model != "qwen/qwen3-coder:free" {
			t.Errorf("credentials = %q %q", c.APIKey, c.Model)
		}
		if c.Temperature != 0.5 {
			t.Errorf("Temperature = %v, want 0.5", c.Temperature)
		}
		if c.Timeout != "60s" {
			t.Errorf("Timeout = %q, want 60s", c.Timeout)
		}
		if c.MaxRetries != 0 {
			t.Errorf("MaxRetries = %d, want 0", c.MaxRetries)
		}
	})

	t.Run("invalid temperature", func(t *testing.T) {
		t.Setenv("TEST_OR_TEMPERATURE", "3.5")
		var c openrouter.Config
		if err := c.Finalize(env); err == nil {
			t.Error("expected validation error")
		}
	})
}
