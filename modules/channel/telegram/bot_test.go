package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// recordingResponder captures Respond calls.
type recordingResponder struct {
	mu      sync.Mutex
	calls   []string
	persona string
	userID  int64
	reply   string
	err     error
}

func (r *recordingResponder) Respond(_ context.Context, userID int64, persona, text string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, text)
	r.persona = persona
	r.userID = userID
	return r.reply, r.err
}

// botAPIStub records sendMessage texts and answers every method.
type botAPIStub struct {
	mu   sync.Mutex
	sent []string
}

func (s *botAPIStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/bott/sendMessage" {
			var req SendMessageRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			s.mu.Lock()
			s.sent = append(s.sent, req.Text)
			s.mu.Unlock()
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":42,"type":"private"}}}`))
			return
		}
		if r.URL.Path == "/bott/getUpdates" {
			_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	})
}

func (s *botAPIStub) sentTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

func newTestBot(t *testing.T, responder Responder) (*Bot, *botAPIStub) {
	t.Helper()
	stub := &botAPIStub{}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	client := NewClient("t", srv.URL)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBot(client, responder, Config{Token: "t"}, logger), stub
}

func textUpdate(userID, chatID int64, text string) *Update {
	return &Update{
		UpdateID: 1,
		Message: &Message{
			MessageID: 10,
			From:      &User{ID: userID, FirstName: "Ann"},
			Chat:      Chat{ID: chatID, Type: "private"},
			Text:      text,
		},
	}
}

func TestHandleUpdate_RepliesViaResponder(t *testing.T) {
	t.Parallel()

	responder := &recordingResponder{reply: "hello Ann"}
	b, stub := newTestBot(t, responder)

	b.handleUpdate(context.Background(), textUpdate(42, 42, "hi there"))

	if len(responder.calls) != 1 || responder.calls[0] != "hi there" {
		t.Fatalf("responder calls = %v", responder.calls)
	}
	if responder.userID != 42 {
		t.Errorf("user id = %d, want 42", responder.userID)
	}

	sent := stub.sentTexts()
	if len(sent) != 1 || sent[0] != "hello Ann" {
		t.Errorf("sent = %v, want the responder reply", sent)
	}
}

func TestHandleUpdate_ResponderErrorFallsBackToNotice(t *testing.T) {
	t.Parallel()

	responder := &recordingResponder{err: errors.New("model offline")}
	b, stub := newTestBot(t, responder)

	b.handleUpdate(context.Background(), textUpdate(42, 42, "hi"))

	sent := stub.sentTexts()
	if len(sent) != 1 || sent[0] != replyFailedNotice {
		t.Errorf("sent = %v, want the failure notice", sent)
	}
}

func TestHandleUpdate_IgnoresBotsAndEmpty(t *testing.T) {
	t.Parallel()

	responder := &recordingResponder{reply: "x"}
	b, _ := newTestBot(t, responder)
	ctx := context.Background()

	b.handleUpdate(ctx, &Update{UpdateID: 1})

	u := textUpdate(42, 42, "hi")
	u.Message.From.IsBot = true
	b.handleUpdate(ctx, u)

	b.handleUpdate(ctx, textUpdate(42, 42, ""))

	if len(responder.calls) != 0 {
		t.Errorf("responder calls = %v, want none", responder.calls)
	}
}

func TestHandleCommand_PersonaSwitch(t *testing.T) {
	t.Parallel()

	responder := &recordingResponder{reply: "ok"}
	b, stub := newTestBot(t, responder)
	ctx := context.Background()

	b.handleUpdate(ctx, textUpdate(42, 42, "/persona diana"))
	b.handleUpdate(ctx, textUpdate(42, 42, "how are you?"))

	if responder.persona != "diana" {
		t.Errorf("persona = %q, want diana", responder.persona)
	}

	sent := stub.sentTexts()
	if len(sent) != 2 || sent[0] != "Switched to diana." {
		t.Errorf("sent = %v", sent)
	}
}

func TestHandleCommand_Start(t *testing.T) {
	t.Parallel()

	responder := &recordingResponder{}
	b, stub := newTestBot(t, responder)

	b.handleUpdate(context.Background(), textUpdate(42, 42, "/start"))

	if len(responder.calls) != 0 {
		t.Errorf("commands must not reach the responder: %v", responder.calls)
	}
	if sent := stub.sentTexts(); len(sent) != 1 {
		t.Errorf("sent = %v, want one greeting", sent)
	}
}

func TestHandleCommand_UnknownIgnored(t *testing.T) {
	t.Parallel()

	responder := &recordingResponder{}
	b, stub := newTestBot(t, responder)

	b.handleUpdate(context.Background(), textUpdate(42, 42, "/frobnicate"))

	if sent := stub.sentTexts(); len(sent) != 0 {
		t.Errorf("sent = %v, want none", sent)
	}
}

func TestBot_StartStop(t *testing.T) {
	t.Parallel()

	responder := &recordingResponder{reply: "ok"}
	b, _ := newTestBot(t, responder)

	b.Start()
	b.Stop()
}
