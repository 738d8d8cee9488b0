package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func fakeChatServer(t *testing.T, handler func(w http.ResponseWriter, req chatRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
			t.Errorf("missing bearer token, got %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
			return
		}
		handler(w, req)
	}))
}

func chatReply(w http.ResponseWriter, content string) {
	resp := chatResponse{}
	resp.Choices = append(resp.Choices, struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}{})
	resp.Choices[0].Message.Content = content
	json.NewEncoder(w).Encode(resp)
}

func testChatBackend(baseURL string, profile chatProfile) *ChatBackend {
	cfg := Config{
		Provider:   profile.name,
		SourceLang: "en",
		TargetLang: "uk",
		APIKey:     "test-key",
		BaseURL:    baseURL,
	}
	return newChatBackend(cfg, profile, zerolog.Nop())
}

func TestChatTranslateOne(t *testing.T) {
	var gotModel string
	srv := fakeChatServer(t, func(w http.ResponseWriter, req chatRequest) {
		gotModel = req.Model
		chatReply(w, "Привіт, світе")
	})
	defer srv.Close()

	b := testChatBackend(srv.URL, fastProfile)
	res := b.TranslateOne(context.Background(), "Hello, world")

	if !res.Translated {
		t.Fatalf("expected success, got err %v", res.Err)
	}
	if res.Text != "Привіт, світе" {
		t.Errorf("unexpected translation %q", res.Text)
	}
	if gotModel != "deepseek-chat" {
		t.Errorf("expected default model deepseek-chat, got %q", gotModel)
	}
}

func TestChatTranslateOneEchoesOnFailure(t *testing.T) {
	srv := fakeChatServer(t, func(w http.ResponseWriter, req chatRequest) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	defer srv.Close()

	b := testChatBackend(srv.URL, fastProfile)
	res := b.TranslateOne(context.Background(), "Hello")

	if res.Translated {
		t.Fatal("expected failure")
	}
	if res.Text != "Hello" {
		t.Errorf("expected original text echoed, got %q", res.Text)
	}
	if res.Err == nil || !strings.Contains(res.Err.Error(), "429") {
		t.Errorf("expected status error, got %v", res.Err)
	}
}

func TestChatTranslateOneRetries(t *testing.T) {
	calls := 0
	srv := fakeChatServer(t, func(w http.ResponseWriter, req chatRequest) {
		calls++
		if calls < 3 {
			http.Error(w, "try again", http.StatusInternalServerError)
			return
		}
		chatReply(w, "done")
	})
	defer srv.Close()

	b := testChatBackend(srv.URL, fastProfile)
	b.cfg.MaxRetries = 3

	res := b.TranslateOne(context.Background(), "text")
	if !res.Translated {
		t.Fatalf("expected success after retries, got %v", res.Err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestChatTranslateManyPreservesOrderAndLength(t *testing.T) {
	srv := fakeChatServer(t, func(w http.ResponseWriter, req chatRequest) {
		// The prompt ends with the text to translate.
		prompt := req.Messages[len(req.Messages)-1].Content
		switch {
		case strings.Contains(prompt, "second"):
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			chatReply(w, "ok:"+prompt[len(prompt)-5:])
		}
	})
	defer srv.Close()

	b := testChatBackend(srv.URL, fastProfile)
	inputs := []string{"first", "second", "third"}

	var lastDone, lastTotal int
	results := b.TranslateMany(context.Background(), inputs, func(done, total int) {
		lastDone, lastTotal = done, total
	})

	if len(results) != len(inputs) {
		t.Fatalf("expected %d results, got %d", len(inputs), len(results))
	}
	if results[1].Translated {
		t.Error("expected middle unit to fail")
	}
	if results[1].Text != "second" {
		t.Errorf("failed unit must echo its input, got %q", results[1].Text)
	}
	if !results[0].Translated || !results[2].Translated {
		t.Error("surrounding units should succeed")
	}
	if lastDone != 3 || lastTotal != 3 {
		t.Errorf("progress callback ended at %d/%d", lastDone, lastTotal)
	}
}

func TestChatTranslateManyWithoutKey(t *testing.T) {
	b := newChatBackend(Config{TargetLang: "uk"}, fastProfile, zerolog.Nop())

	inputs := []string{"a", "b"}
	results := b.TranslateMany(context.Background(), inputs, nil)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Translated {
			t.Errorf("result %d should not be translated", i)
		}
		if res.Text != inputs[i] {
			t.Errorf("result %d should echo input, got %q", i, res.Text)
		}
	}
}

func TestChatIsAvailable(t *testing.T) {
	b := testChatBackend("http://unused", fastProfile)
	if err := b.IsAvailable(context.Background()); err != nil {
		t.Errorf("expected available with key, got %v", err)
	}

	b.cfg.APIKey = "  "
	if err := b.IsAvailable(context.Background()); err == nil {
		t.Error("expected unavailable without key")
	}
}

func TestReasonerPromptAndModel(t *testing.T) {
	var got chatRequest
	srv := fakeChatServer(t, func(w http.ResponseWriter, req chatRequest) {
		got = req
		chatReply(w, "translated")
	})
	defer srv.Close()

	b := testChatBackend(srv.URL, reasonerProfile)
	if res := b.TranslateOne(context.Background(), "some text"); !res.Translated {
		t.Fatalf("unexpected failure: %v", res.Err)
	}

	if got.Model != "deepseek-reasoner" {
		t.Errorf("expected reasoner model, got %q", got.Model)
	}
	prompt := got.Messages[len(got.Messages)-1].Content
	if !strings.Contains(prompt, "Follow these steps") {
		t.Errorf("reasoner prompt should be stepwise, got %q", prompt)
	}
	if got.Temperature != 0.1 {
		t.Errorf("expected temperature 0.1, got %v", got.Temperature)
	}
}

func TestChatEndpointSuffixTolerated(t *testing.T) {
	b := testChatBackend("http://host/chat/completions", fastProfile)
	if got := b.endpoint(); got != "http://host/chat/completions" {
		t.Errorf("endpoint doubled the suffix: %q", got)
	}

	b = testChatBackend("http://host/", fastProfile)
	if got := b.endpoint(); got != "http://host/chat/completions" {
		t.Errorf("unexpected endpoint %q", got)
	}
}

func TestChatCleansWrappedResponse(t *testing.T) {
	srv := fakeChatServer(t, func(w http.ResponseWriter, req chatRequest) {
		chatReply(w, fmt.Sprintf("%q", "Привіт"))
	})
	defer srv.Close()

	b := testChatBackend(srv.URL, fastProfile)
	res := b.TranslateOne(context.Background(), "Hello")
	if !res.Translated {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if res.Text != "Привіт" {
		t.Errorf("expected quotes stripped, got %q", res.Text)
	}
}
