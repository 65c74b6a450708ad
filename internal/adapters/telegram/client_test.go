package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an httptest Bot API that records calls per method.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string][]map[string]any

	nextMessageID int64
	updates       []Update
	failSend      bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string][]map[string]any), nextMessageID: 100}
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]

		body := map[string]any{}
		if r.Method == http.MethodPost && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			require.NoError(t, r.ParseMultipartForm(8<<20))
			for k, v := range r.MultipartForm.Value {
				body[k] = v[0]
			}
			if files := r.MultipartForm.File["document"]; len(files) > 0 {
				body["filename"] = files[0].Filename
			}
		}
		for k, v := range r.URL.Query() {
			body[k] = v[0]
		}

		f.mu.Lock()
		f.calls[method] = append(f.calls[method], body)
		failSend := f.failSend
		updates := f.updates
		f.nextMessageID++
		msgID := f.nextMessageID
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case failSend && method == "sendMessage":
			fmt.Fprint(w, `{"ok":false,"description":"Bad Request: message is too long"}`)
		case method == "getUpdates":
			// Confirmed updates stay behind the offset, like the real API.
			off, _ := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 64)
			pending := []Update{}
			for _, u := range updates {
				if u.UpdateID >= off {
					pending = append(pending, u)
				}
			}
			result, _ := json.Marshal(pending)
			fmt.Fprintf(w, `{"ok":true,"result":%s}`, result)
		case method == "sendMessage":
			fmt.Fprintf(w, `{"ok":true,"result":{"message_id":%d,"chat":{"id":1}}}`, msgID)
		default:
			fmt.Fprint(w, `{"ok":true,"result":true}`)
		}
	})
}

func (f *fakeAPI) callsFor(method string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.calls[method]...)
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)
	return NewClient("test-token", time.Second, WithBaseURL(srv.URL)), api
}

func TestGetUpdatesAdvancesOffset(t *testing.T) {
	client, api := newTestClient(t)
	api.updates = []Update{
		{UpdateID: 10, Message: &Message{Chat: Chat{ID: 1}, Text: "hi"}},
		{UpdateID: 12, Message: &Message{Chat: Chat{ID: 2}, Text: "yo"}},
	}

	updates, next, err := client.GetUpdates(context.Background(), 5, 30*time.Second)
	require.NoError(t, err)
	assert.Len(t, updates, 2)
	assert.EqualValues(t, 13, next)

	calls := api.callsFor("getUpdates")
	require.Len(t, calls, 1)
	assert.Equal(t, "5", calls[0]["offset"])
	assert.Equal(t, "30", calls[0]["timeout"])
}

func TestSendMessageCarriesParseModeAndKeyboard(t *testing.T) {
	client, api := newTestClient(t)

	markup := &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{{Text: "Back", CallbackData: "back"}},
	}}
	msgID, err := client.SendMessage(context.Background(), 42, "hello", markup)
	require.NoError(t, err)
	assert.NotZero(t, msgID)

	calls := api.callsFor("sendMessage")
	require.Len(t, calls, 1)
	assert.EqualValues(t, 42, calls[0]["chat_id"])
	assert.Equal(t, "MarkdownV2", calls[0]["parse_mode"])
	assert.Contains(t, calls[0], "reply_markup")
}

func TestSendMessageAPIErrorSurfaces(t *testing.T) {
	client, api := newTestClient(t)
	api.failSend = true

	_, err := client.SendMessage(context.Background(), 1, "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message is too long")
}

func TestSendDocumentIsMultipart(t *testing.T) {
	client, api := newTestClient(t)

	err := client.SendDocument(context.Background(), 7, []byte("report body"), "report.txt")
	require.NoError(t, err)

	calls := api.callsFor("sendDocument")
	require.Len(t, calls, 1)
	assert.Equal(t, "7", calls[0]["chat_id"])
	assert.Equal(t, "report.txt", calls[0]["filename"])
}

func TestTransportEditFallsBackWithoutPriorMessage(t *testing.T) {
	client, api := newTestClient(t)
	tr := NewTransport(client)
	ctx := context.Background()

	// No tracked message yet: EditLast degrades to a fresh send.
	require.NoError(t, tr.EditLast(ctx, "42", "menu", nil))
	assert.Len(t, api.callsFor("sendMessage"), 1)
	assert.Empty(t, api.callsFor("editMessageText"))

	// After a SendButtons the next edit rewrites in place.
	require.NoError(t, tr.SendButtons(ctx, "42", "menu", nil))
	require.NoError(t, tr.EditLast(ctx, "42", "section", nil))

	edits := api.callsFor("editMessageText")
	require.Len(t, edits, 1)
	assert.EqualValues(t, 42, edits[0]["chat_id"])
	assert.NotZero(t, edits[0]["message_id"])

	// Forget resets the tracking.
	tr.Forget("42")
	require.NoError(t, tr.EditLast(ctx, "42", "menu", nil))
	assert.Len(t, api.callsFor("editMessageText"), 1)
}

func TestTransportRejectsNonNumericIdentity(t *testing.T) {
	client, _ := newTestClient(t)
	tr := NewTransport(client)

	err := tr.SendText(context.Background(), "not-a-chat", "x")
	assert.Error(t, err)
}
