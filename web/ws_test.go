package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kbukum/voxscribe/display"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/form"
	"github.com/kbukum/voxscribe/transcript"
)

type wsTestReply struct {
	Data  json.RawMessage      `json:"data"`
	Error *apperrors.ErrorBody `json:"error"`
}

// dialDictation opens the dictation socket inside the env's session.
func (e *testEnv) dialDictation(t *testing.T) *websocket.Conn {
	t.Helper()
	if len(e.cookies) == 0 {
		e.do(http.MethodGet, "/", "", nil)
	}
	ts := httptest.NewServer(e.engine)
	t.Cleanup(ts.Close)

	header := http.Header{}
	for _, c := range e.cookies {
		header.Add("Cookie", (&http.Cookie{Name: c.Name, Value: c.Value}).String())
	}
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/dictation/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg any) wsTestReply {
	t.Helper()
	_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply wsTestReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	return reply
}

func (e *testEnv) dictationStatus(t *testing.T) form.Status {
	t.Helper()
	rr := e.do(http.MethodGet, "/api/dictation", "", nil)
	var resp struct {
		Data form.Status `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return resp.Data
}

func TestDictationSocketFlow(t *testing.T) {
	e := newTestEnv(t)
	conn := e.dialDictation(t)

	reply := roundTrip(t, conn, map[string]any{"type": "capability", "supported": true})
	if reply.Error != nil {
		t.Fatalf("capability: %+v", reply.Error)
	}
	var start StartResponse
	if err := json.Unmarshal(reply.Data, &start); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if !start.Status.Recording || start.Settings.Lang != "en-US" {
		t.Errorf("unexpected start reply %+v", start)
	}

	reply = roundTrip(t, conn, map[string]any{
		"type":    "result",
		"results": [][]map[string]any{{{"transcript": "over the socket"}, {"transcript": "over the sock it"}}},
	})
	if reply.Error != nil {
		t.Fatalf("result: %+v", reply.Error)
	}
	var ev EventResponse
	if err := json.Unmarshal(reply.Data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Text != "over the socket" {
		t.Errorf("expected the first alternative, got %q", ev.Text)
	}

	if reply := roundTrip(t, conn, map[string]any{"type": "end"}); reply.Error != nil {
		t.Fatalf("end: %+v", reply.Error)
	}

	rr := e.do(http.MethodGet, "/api/transcript", "", nil)
	var view struct {
		Data display.View `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Data.Text != "over the socket" || view.Data.Source != transcript.SourceVoice {
		t.Errorf("unexpected transcript %+v", view.Data)
	}
}

func TestDictationSocketErrors(t *testing.T) {
	e := newTestEnv(t)
	conn := e.dialDictation(t)

	tests := []struct {
		name string
		msg  any
		want apperrors.ErrorCode
	}{
		{"malformed", "not json", apperrors.ErrCodeInvalidInput},
		{"unknown type", map[string]any{"type": "bogus"}, apperrors.ErrCodeInvalidInput},
		{"result while idle", map[string]any{"type": "result", "results": [][]map[string]any{{{"transcript": "x"}}}}, apperrors.ErrCodeInvalidTransition},
		{"unsupported", map[string]any{"type": "capability", "supported": false}, apperrors.ErrCodeSpeechUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reply wsTestReply
			if s, ok := tt.msg.(string); ok {
				_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, []byte(s)); err != nil {
					t.Fatalf("write: %v", err)
				}
				_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
				if err := conn.ReadJSON(&reply); err != nil {
					t.Fatalf("read: %v", err)
				}
			} else {
				reply = roundTrip(t, conn, tt.msg)
			}
			if reply.Error == nil || reply.Error.Code != tt.want {
				t.Errorf("expected %s, got %+v", tt.want, reply.Error)
			}
		})
	}
}

func TestDictationSocketCloseEndsRecording(t *testing.T) {
	e := newTestEnv(t)
	conn := e.dialDictation(t)

	if reply := roundTrip(t, conn, map[string]any{"type": "capability", "supported": true}); reply.Error != nil {
		t.Fatalf("capability: %+v", reply.Error)
	}
	if rr := e.upload([]byte("audio")); rr.Code != http.StatusConflict {
		t.Fatalf("expected conflict while recording, got %d", rr.Code)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "tab closed"))
	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for e.dictationStatus(t).Recording {
		if time.Now().After(deadline) {
			t.Fatal("recording still active after the socket closed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if rr := e.upload([]byte("audio")); rr.Code != http.StatusOK {
		t.Errorf("expected upload after the socket closed, got %d: %s", rr.Code, rr.Body.String())
	}
}
