package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"casting_ops_backend/platform/logger"

	slackapi "github.com/slack-go/slack"
)

type slackConfig struct{}

func (slackConfig) GetSlackBotToken() string       { return "xoxb-test" }
func (slackConfig) GetSlackChannelID() string      { return "C123" }
func (slackConfig) GetSlackMentionGroupID() string { return "S999" }
func (slackConfig) IsSlackEnabled() bool           { return true }

type fakeSlack struct {
	mu         sync.Mutex
	calls      []string
	posted     []map[string]string
	failUpload bool
	failInfo   bool
	srv        *httptest.Server
}

func newFakeSlack(t *testing.T) *fakeSlack {
	t.Helper()
	f := &fakeSlack{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeSlack) serve(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	f.mu.Lock()
	f.calls = append(f.calls, r.URL.Path)
	f.mu.Unlock()

	reply := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	switch r.URL.Path {
	case "/chat.postMessage":
		f.mu.Lock()
		f.posted = append(f.posted, map[string]string{
			"text":      r.Form.Get("text"),
			"thread_ts": r.Form.Get("thread_ts"),
		})
		f.mu.Unlock()
		reply(map[string]any{"ok": true, "channel": "C123", "ts": "1700000000.000100"})
	case "/chat.getPermalink":
		reply(map[string]any{"ok": true, "channel": "C123", "permalink": "https://slack.test/p" + r.Form.Get("message_ts")})
	case "/files.getUploadURLExternal":
		if f.failUpload {
			reply(map[string]any{"ok": false, "error": "invalid_auth"})
			return
		}
		reply(map[string]any{"ok": true, "upload_url": f.srv.URL + "/upload", "file_id": "F1"})
	case "/upload":
		w.WriteHeader(http.StatusOK)
	case "/files.completeUploadExternal":
		reply(map[string]any{"ok": true, "files": []map[string]any{{"id": "F1", "title": "order.pdf"}}})
	case "/files.info":
		if f.failInfo {
			reply(map[string]any{"ok": false, "error": "file_not_found"})
			return
		}
		reply(map[string]any{"ok": true, "file": map[string]any{
			"id": "F1",
			"shares": map[string]any{
				"public": map[string]any{"C123": []map[string]any{{"ts": "1700000000.000200"}}},
			},
		}})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSlack) client() *Client {
	c := NewClient(slackConfig{}, logger.New("development"), slackapi.OptionAPIURL(f.srv.URL+"/"))
	c.shareWait = 0
	return c
}

func TestDispatchPostsTextAndResolvesPermalink(t *testing.T) {
	fake := newFakeSlack(t)

	res, err := fake.client().Dispatch(context.Background(), Message{Text: "hello", ThreadTS: "1699.1"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if res.TS != "1700000000.000100" {
		t.Fatalf("unexpected ts %q", res.TS)
	}
	if res.Permalink != "https://slack.test/p1700000000.000100" {
		t.Fatalf("unexpected permalink %q", res.Permalink)
	}
	if fake.posted[0]["thread_ts"] != "1699.1" {
		t.Fatalf("reply was not threaded: %+v", fake.posted[0])
	}
}

func TestDispatchUploadReadsShareTimestamp(t *testing.T) {
	fake := newFakeSlack(t)

	res, err := fake.client().Dispatch(context.Background(), Message{
		Text: "order",
		File: &File{Name: "order.pdf", Content: []byte("%PDF-1.4")},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if res.TS != "1700000000.000200" {
		t.Fatalf("expected ts from file shares, got %q", res.TS)
	}
	if len(fake.posted) != 0 {
		t.Fatal("upload path should not post a separate message")
	}
}

func TestDispatchFallsBackToTextWhenUploadFails(t *testing.T) {
	fake := newFakeSlack(t)
	fake.failUpload = true

	res, err := fake.client().Dispatch(context.Background(), Message{
		Text: "order",
		File: &File{Name: "order.pdf", Content: []byte("%PDF-1.4")},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if res.TS != "1700000000.000100" || len(fake.posted) != 1 {
		t.Fatalf("expected text fallback, got %+v posted=%d", res, len(fake.posted))
	}
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	if _, err := c.Dispatch(context.Background(), Message{Text: "x"}); err != nil {
		t.Fatalf("nil client should not fail: %v", err)
	}
	if c.MentionGroupID() != "" {
		t.Fatal("nil client has no mention group")
	}
}

type disabledSlack struct{ slackConfig }

func (disabledSlack) IsSlackEnabled() bool { return false }

func TestNewClientReturnsNilWhenDisabled(t *testing.T) {
	if NewClient(disabledSlack{}, logger.New("development")) != nil {
		t.Fatal("expected nil client")
	}
}

func TestDispatchDoesNotRepostWhenShareTimestampIsUnknown(t *testing.T) {
	fake := newFakeSlack(t)
	fake.failInfo = true

	res, err := fake.client().Dispatch(context.Background(), Message{
		Text: "order",
		File: &File{Name: "order.pdf", Content: []byte("%PDF-1.4")},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if res.TS != "" || res.Permalink != "" {
		t.Fatalf("expected empty result, got %+v", res)
	}
	for _, call := range fake.calls {
		if call == "/chat.postMessage" {
			t.Fatal("uploaded message was posted a second time as text")
		}
	}
}
