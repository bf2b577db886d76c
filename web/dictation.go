package web

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voxscribe/dictation"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/form"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/server"
	"github.com/kbukum/voxscribe/sse"
	"github.com/kbukum/voxscribe/validation"
)

// StartRequest reports whether the browser has a speech recognizer.
type StartRequest struct {
	Supported bool `json:"supported"`
}

// StartResponse carries the recognizer settings for the utterance.
type StartResponse struct {
	Settings dictation.Settings `json:"settings"`
	Status   form.Status        `json:"status"`
}

// EventResponse is the result of one recognizer event.
type EventResponse struct {
	From   dictation.State `json:"from"`
	To     dictation.State `json:"to"`
	Text   string          `json:"text,omitempty"`
	Error  string          `json:"error,omitempty"`
	Status form.Status     `json:"status"`
}

// DictationStatus returns the session's voice state.
func (h *Handlers) DictationStatus(c *gin.Context) {
	server.RespondOK(c, h.deps.Form.Status(sessionID(c)))
}

// StartDictation begins recording when the browser supports it.
func (h *Handlers) StartDictation(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
		return
	}
	resp, err := h.start(c.Request.Context(), sessionID(c), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, resp)
}

// DictationEvent applies one recognizer callback.
func (h *Handlers) DictationEvent(c *gin.Context) {
	var ev dictation.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
		return
	}
	resp, err := h.apply(c.Request.Context(), sessionID(c), ev)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, resp)
}

func (h *Handlers) start(ctx context.Context, sid string, req StartRequest) (StartResponse, error) {
	settings, err := h.deps.Form.StartVoice(ctx, sid, dictation.NewBrowser(req.Supported))
	if err != nil {
		return StartResponse{}, err
	}
	status := h.publishStatus(ctx, sid)
	return StartResponse{Settings: settings, Status: status}, nil
}

func (h *Handlers) apply(ctx context.Context, sid string, ev dictation.Event) (EventResponse, error) {
	if err := validation.Validate(ev); err != nil {
		return EventResponse{}, err
	}
	out, err := h.deps.Form.HandleVoiceEvent(ctx, sid, ev)
	if err != nil {
		return EventResponse{}, err
	}
	status := h.publishStatus(ctx, sid)
	return EventResponse{From: out.From, To: out.To, Text: out.Text, Error: out.Error, Status: status}, nil
}

// publishStatus pushes the new voice state to every tab of the session.
func (h *Handlers) publishStatus(ctx context.Context, sid string) form.Status {
	status := h.deps.Form.Status(sid)
	ev, err := sse.NewEvent(sse.EventDictation, status)
	if err != nil {
		h.log.WithContext(ctx).Error("dictation event not encoded", logger.ErrorFields("encode", err))
		return status
	}
	h.deps.Hub.Broadcast(sse.SessionPattern(sid), ev)
	return status
}
