package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"paperchat/types"
)

func fakeCompletions(t *testing.T, lastReq *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(lastReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "mentor reply"}},
			},
		})
	}))
}

func TestChat_MessageOrder(t *testing.T) {
	var req chatRequest
	srv := fakeCompletions(t, &req)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "test-model"})

	history := []types.ChatMessage{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	out, err := c.Chat(context.Background(), "[p.1] context text", "what about page one?", history, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "mentor reply" {
		t.Errorf("answer = %q", out)
	}

	if len(req.Messages) != 5 {
		t.Fatalf("expected 5 messages (2 system, 2 history, 1 user), got %d", len(req.Messages))
	}
	if req.Messages[0].Role != "system" || req.Messages[1].Role != "system" {
		t.Error("first two messages must be system prompts")
	}
	if !strings.Contains(req.Messages[1].Content, "[p.1] context text") {
		t.Error("retrieved context missing from the second system message")
	}
	if req.Messages[2].Content != "earlier question" || req.Messages[3].Content != "earlier answer" {
		t.Error("history not forwarded in order")
	}
	if req.Messages[4].Content != "what about page one?" {
		t.Errorf("user turn = %q", req.Messages[4].Content)
	}
}

func TestChat_LeadReplacesEmptyUserMessage(t *testing.T) {
	var req chatRequest
	srv := fakeCompletions(t, &req)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	if _, err := c.Chat(context.Background(), "ctx", "", nil, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != "user" || last.Content != leadUserMessage {
		t.Errorf("expected the lead prompt as the user turn, got %+v", last)
	}
}

func TestSummarize_TruncatesInput(t *testing.T) {
	var req chatRequest
	srv := fakeCompletions(t, &req)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	long := strings.Repeat("a", maxSummaryChars+5000)
	if _, err := c.Summarize(context.Background(), long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := req.Messages[len(req.Messages)-1].Content
	if strings.Count(user, "a") != maxSummaryChars {
		t.Errorf("summary input not bounded to %d chars", maxSummaryChars)
	}
}

func TestSummarize_TruncatesOnRuneBoundary(t *testing.T) {
	var req chatRequest
	srv := fakeCompletions(t, &req)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	// Two-byte runes: a byte-indexed cut would end mid-sequence.
	long := strings.Repeat("é", maxSummaryChars+100)
	if _, err := c.Summarize(context.Background(), long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := req.Messages[len(req.Messages)-1].Content
	if !utf8.ValidString(user) {
		t.Fatal("summary input contains a broken multi-byte sequence")
	}
	if got := strings.Count(user, "é"); got != maxSummaryChars {
		t.Errorf("summary input holds %d runes of text, want %d", got, maxSummaryChars)
	}
}

func TestComplete_ProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	if _, err := c.Complete(context.Background(), []chatMessage{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatal("expected an error from a failing provider")
	}
}
