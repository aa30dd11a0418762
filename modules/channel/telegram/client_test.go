package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestGetMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTEST_TOKEN/getMe" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		writeJSON(t, w, APIResponse[User]{
			OK: true,
			Result: User{
				ID:        123,
				IsBot:     true,
				FirstName: "TestBot",
				Username:  "test_bot",
			},
		})
	}))
	defer srv.Close()

	client := NewClient("TEST_TOKEN", srv.URL, false, discardLogger())
	user, err := client.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe() error: %v", err)
	}
	if user.ID != 123 {
		t.Errorf("ID = %d, want 123", user.ID)
	}
	if user.Username != "test_bot" {
		t.Errorf("Username = %q, want %q", user.Username, "test_bot")
	}
}

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var req SendMessageRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("unmarshal request: %v", err)
		}
		if req.ChatID != 42 {
			t.Errorf("ChatID = %d, want 42", req.ChatID)
		}
		if req.Text != "hello" {
			t.Errorf("Text = %q, want %q", req.Text, "hello")
		}
		if req.ParseMode != "HTML" {
			t.Errorf("ParseMode = %q, want %q", req.ParseMode, "HTML")
		}
		writeJSON(t, w, APIResponse[Message]{
			OK:     true,
			Result: Message{MessageID: 99, Chat: Chat{ID: 42, Type: "group"}, Text: "hello"},
		})
	}))
	defer srv.Close()

	client := NewClient("TOKEN", srv.URL, false, discardLogger())
	msg, err := client.SendMessage(context.Background(), SendMessageRequest{
		ChatID:    42,
		Text:      "hello",
		ParseMode: "HTML",
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if msg.MessageID != 99 {
		t.Errorf("MessageID = %d, want 99", msg.MessageID)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(t, w, APIResponse[json.RawMessage]{
			OK:          false,
			ErrorCode:   400,
			Description: "Bad Request: chat not found",
		})
	}))
	defer srv.Close()

	client := NewClient("TOKEN", srv.URL, false, discardLogger())
	_, err := client.SendMessage(context.Background(), SendMessageRequest{ChatID: 1, Text: "x"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Code != 400 {
		t.Errorf("Code = %d, want 400", apiErr.Code)
	}
	if !strings.Contains(apiErr.Description, "chat not found") {
		t.Errorf("Description = %q, want chat not found", apiErr.Description)
	}
}

func TestRateLimitRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			writeJSON(t, w, APIResponse[json.RawMessage]{
				OK:          false,
				ErrorCode:   429,
				Description: "Too Many Requests",
				Parameters:  &ResponseParameters{RetryAfter: 0},
			})
			return
		}
		writeJSON(t, w, APIResponse[Message]{OK: true, Result: Message{MessageID: 1}})
	}))
	defer srv.Close()

	client := NewClient("TOKEN", srv.URL, false, discardLogger())
	msg, err := client.SendMessage(context.Background(), SendMessageRequest{ChatID: 1, Text: "x"})
	if err != nil {
		t.Fatalf("SendMessage() error after retry: %v", err)
	}
	if msg.MessageID != 1 {
		t.Errorf("MessageID = %d, want 1", msg.MessageID)
	}
	if calls.Load() != 2 {
		t.Errorf("request count = %d, want 2", calls.Load())
	}
}

func TestSendPhotoMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendPhoto" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("chat_id"); got != "42" {
			t.Errorf("chat_id = %q, want %q", got, "42")
		}
		if got := r.FormValue("caption"); got != "look" {
			t.Errorf("caption = %q, want %q", got, "look")
		}
		file, _, err := r.FormFile("photo")
		if err != nil {
			t.Fatalf("photo part missing: %v", err)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "PNG" {
			t.Errorf("photo bytes = %q, want %q", data, "PNG")
		}
		writeJSON(t, w, APIResponse[Message]{OK: true, Result: Message{MessageID: 5}})
	}))
	defer srv.Close()

	client := NewClient("TOKEN", srv.URL, false, discardLogger())
	msg, err := client.SendPhoto(context.Background(), SendPhotoRequest{
		ChatID:  42,
		Photo:   []byte("PNG"),
		Caption: "look",
	})
	if err != nil {
		t.Fatalf("SendPhoto() error: %v", err)
	}
	if msg.MessageID != 5 {
		t.Errorf("MessageID = %d, want 5", msg.MessageID)
	}
}

func TestEditMessageMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/editMessageMedia" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("message_id"); got != "7" {
			t.Errorf("message_id = %q, want %q", got, "7")
		}
		var media struct {
			Type  string `json:"type"`
			Media string `json:"media"`
		}
		if err := json.Unmarshal([]byte(r.FormValue("media")), &media); err != nil {
			t.Fatalf("unmarshal media field: %v", err)
		}
		if media.Type != "photo" || media.Media != "attach://media" {
			t.Errorf("media = %+v, want photo attach://media", media)
		}
		if _, _, err := r.FormFile("media"); err != nil {
			t.Fatalf("media part missing: %v", err)
		}
		writeJSON(t, w, APIResponse[Message]{OK: true, Result: Message{MessageID: 7}})
	}))
	defer srv.Close()

	client := NewClient("TOKEN", srv.URL, false, discardLogger())
	_, err := client.EditMessageMedia(context.Background(), EditMessageMediaRequest{
		ChatID:    42,
		MessageID: 7,
		Photo:     []byte("PNG2"),
	})
	if err != nil {
		t.Fatalf("EditMessageMedia() error: %v", err)
	}
}
