package web

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kbukum/voxscribe/dictation"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/logger"
)

const (
	wsWriteWait      = 10 * time.Second
	wsMaxMessageSize = 64 << 10
)

// wsMessage is one frame from the page. Type "capability" starts a voice
// session; every other type is a recognizer event.
type wsMessage struct {
	Type      string                    `json:"type"`
	Supported bool                      `json:"supported,omitempty"`
	Results   [][]dictation.Alternative `json:"results,omitempty"`
	Error     string                    `json:"error,omitempty"`
}

// wsReply answers each frame in order.
type wsReply struct {
	Data  any                  `json:"data,omitempty"`
	Error *apperrors.ErrorBody `json:"error,omitempty"`
}

// DictationSocket carries the same messages as the dictation POST routes
// over one connection, for the lifetime of a recording.
func (h *Handlers) DictationSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.WithContext(c.Request.Context()).Debug("websocket upgrade failed", logger.ErrorFields("upgrade", err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessageSize)

	ctx := c.Request.Context()
	sid := sessionID(c)
	log := h.log.WithContext(ctx)

	// A socket that goes away mid-recording ends the recording, so the
	// session can upload or record again.
	defer func() {
		if h.deps.Form.Abandon(context.WithoutCancel(ctx), sid) {
			h.publishStatus(ctx, sid)
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("dictation socket closed", logger.ErrorFields("read", err))
			}
			return
		}

		var reply wsReply
		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			reply.Error = errorBody(apperrors.InvalidInput("message", "malformed JSON"))
		} else {
			data, err := h.dispatch(c, sid, msg)
			if err != nil {
				reply.Error = errorBody(err)
			} else {
				reply.Data = data
			}
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			log.Warn("dictation socket write failed", logger.ErrorFields("write", err))
			return
		}
	}
}

func (h *Handlers) dispatch(c *gin.Context, sid string, msg wsMessage) (any, error) {
	ctx := c.Request.Context()
	if msg.Type == "capability" {
		return h.start(ctx, sid, StartRequest{Supported: msg.Supported})
	}
	return h.apply(ctx, sid, dictation.Event{
		Type:    dictation.EventType(msg.Type),
		Results: msg.Results,
		Error:   msg.Error,
	})
}

func errorBody(err error) *apperrors.ErrorBody {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	body := appErr.ToResponse().Error
	return &body
}
