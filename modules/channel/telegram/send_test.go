package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func newTestSender(t *testing.T, srvURL string, chats []int64, renderer *fakeRenderer) *Telegram {
	t.Helper()
	cfg := Config{Token: "TOKEN", Chats: chats}
	cfg.defaults()
	return &Telegram{
		config:   cfg,
		logger:   discardLogger(),
		client:   NewClient("TOKEN", srvURL, false, discardLogger()),
		metrics:  testMetrics(),
		renderer: bridgeRenderer(renderer),
	}
}

func TestSendTextFansOut(t *testing.T) {
	var mu sync.Mutex
	var chatIDs []int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		chatIDs = append(chatIDs, req.ChatID)
		mu.Unlock()
		writeJSON(t, w, APIResponse[Message]{OK: true, Result: Message{MessageID: 1}})
	}))
	defer srv.Close()

	sender := newTestSender(t, srv.URL, []int64{10, 20, 30}, nil)
	if err := sender.SendText(context.Background(), "hi"); err != nil {
		t.Fatalf("SendText() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(chatIDs) != 3 {
		t.Fatalf("delivered to %d chats, want 3", len(chatIDs))
	}
}

func TestSendTextContinuesPastFailingChat(t *testing.T) {
	var mu sync.Mutex
	var chatIDs []int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		chatIDs = append(chatIDs, req.ChatID)
		mu.Unlock()

		if req.ChatID == 20 {
			writeJSON(t, w, APIResponse[json.RawMessage]{
				OK: false, ErrorCode: 403, Description: "Forbidden: bot was kicked",
			})
			return
		}
		writeJSON(t, w, APIResponse[Message]{OK: true, Result: Message{MessageID: 1}})
	}))
	defer srv.Close()

	sender := newTestSender(t, srv.URL, []int64{10, 20, 30}, nil)
	err := sender.SendText(context.Background(), "hi")
	if err == nil {
		t.Fatal("SendText() = nil error, want error for kicked chat")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(chatIDs) != 3 {
		t.Errorf("delivered to %d chats, want all 3 attempted", len(chatIDs))
	}
}

func TestSendPagedAttachesKeyboardOnlyForMultiplePages(t *testing.T) {
	var mu sync.Mutex
	var markups []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		mu.Lock()
		markups = append(markups, r.FormValue("reply_markup"))
		mu.Unlock()
		writeJSON(t, w, APIResponse[Message]{OK: true, Result: Message{MessageID: 1}})
	}))
	defer srv.Close()

	multi := newTestSender(t, srv.URL, []int64{10}, &fakeRenderer{pages: 3})
	if err := multi.SendPaged(context.Background(), "book", "a book"); err != nil {
		t.Fatalf("SendPaged() error: %v", err)
	}

	single := newTestSender(t, srv.URL, []int64{10}, &fakeRenderer{pages: 1})
	if err := single.SendPaged(context.Background(), "note", "a note"); err != nil {
		t.Fatalf("SendPaged() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(markups) != 2 {
		t.Fatalf("sendPhoto calls = %d, want 2", len(markups))
	}
	if markups[0] == "" {
		t.Error("multi-page send has no keyboard")
	}
	if markups[1] != "" {
		t.Errorf("single-page send has keyboard %q, want none", markups[1])
	}
}

func TestSendPagedWithoutRenderer(t *testing.T) {
	sender := newTestSender(t, "http://127.0.0.1:0", []int64{10}, nil)
	if err := sender.SendPaged(context.Background(), "book", "a book"); err == nil {
		t.Error("SendPaged() = nil error without renderer, want error")
	}
}
