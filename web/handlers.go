package web

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kbukum/voxscribe/display"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/form"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/server"
	"github.com/kbukum/voxscribe/server/middleware"
	"github.com/kbukum/voxscribe/session"
	"github.com/kbukum/voxscribe/sse"
	"github.com/kbukum/voxscribe/transcript"
	"github.com/kbukum/voxscribe/transcription"
	"github.com/kbukum/voxscribe/validation"
)

// TranscriptReader reads a session's transcript.
type TranscriptReader interface {
	Get(ctx context.Context, sessionID string) (*transcript.Transcript, error)
}

// Deps are the collaborators of the web surface. All are required except
// RateLimit, KeepAlive and Log.
type Deps struct {
	Form     *form.Form
	Display  *display.Display
	Store    TranscriptReader
	Sessions *session.Manager
	Hub      *sse.Hub
	// MaxUploadBytes is announced to the page for its client-side check.
	MaxUploadBytes int64
	// RateLimit caps transcription requests per client per minute.
	RateLimit int
	KeepAlive time.Duration
	Log       *logger.Logger
}

// Handlers serves the page and its API.
type Handlers struct {
	deps     Deps
	log      *logger.Logger
	page     *pageRenderer
	upgrader websocket.Upgrader
}

// NewHandlers parses the embedded page template.
func NewHandlers(deps Deps) (*Handlers, error) {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	page, err := newPageRenderer()
	if err != nil {
		return nil, err
	}
	return &Handlers{
		deps: deps,
		log:  deps.Log.WithComponent("web"),
		page: page,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}, nil
}

// Register mounts every route under r. Everything except static assets
// runs inside a session.
func (h *Handlers) Register(r gin.IRouter) {
	r.StaticFS("/static", staticFS())

	s := r.Group("/", middleware.GinWrap(h.deps.Sessions.Middleware()))
	s.GET("/", h.Page)

	api := s.Group("/api")
	upload := []gin.HandlerFunc{}
	if h.deps.RateLimit > 0 {
		upload = append(upload, middleware.RateLimit(middleware.RateLimitConfig{RequestsPerMinute: h.deps.RateLimit}))
	}
	api.POST("/transcribe", append(upload, h.Transcribe)...)
	api.GET("/transcript", h.GetTranscript)
	api.GET("/transcript/download", h.Download)
	api.POST("/transcript/copy", h.Copy)
	api.GET("/dictation", h.DictationStatus)
	api.POST("/dictation/start", h.StartDictation)
	api.POST("/dictation/events", h.DictationEvent)
	api.GET("/dictation/ws", h.DictationSocket)
	api.GET("/events", h.Events)
}

func sessionID(c *gin.Context) string {
	return session.ID(c.Request.Context())
}

func (h *Handlers) transcript(c *gin.Context) (*transcript.Transcript, bool) {
	t, err := h.deps.Store.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		server.RespondWithError(c, err)
		return nil, false
	}
	return t, true
}

// Page renders the single page with the current transcript, if any.
func (h *Handlers) Page(c *gin.Context) {
	t, ok := h.transcript(c)
	if !ok {
		return
	}
	sid := sessionID(c)
	data := pageData{
		View:           h.deps.Display.Render(sid, t),
		Dictation:      h.deps.Form.Status(sid),
		MaxUploadBytes: h.deps.MaxUploadBytes,
		MaxUploadMB:    h.deps.MaxUploadBytes >> 20,
	}
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if err := h.page.render(c.Writer, data); err != nil {
		h.log.WithContext(c.Request.Context()).Error("page render failed", logger.ErrorFields("render", err))
	}
}

// TranscribeResponse is the body of a successful upload.
type TranscribeResponse struct {
	Text string `json:"text"`
}

// Transcribe accepts multipart field "audio".
func (h *Handlers) Transcribe(c *gin.Context) {
	ctx := c.Request.Context()
	up, err := readUpload(c, h.deps.MaxUploadBytes)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	text, err := h.deps.Form.Submit(ctx, sessionID(c), up)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, TranscribeResponse{Text: text})
}

// readUpload returns a nil upload when the field is missing. Reading stops
// one byte past limit, which is enough to reject the file.
func readUpload(c *gin.Context, limit int64) (*transcription.Upload, error) {
	fh, err := c.FormFile(transcription.FormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return nil, nil
		case errors.As(err, &maxErr):
			return nil, apperrors.FileTooLarge(maxErr.Limit+1, limit)
		default:
			return nil, apperrors.InvalidInput(transcription.FormField, "malformed multipart body")
		}
	}
	data, err := readPart(fh, limit)
	if err != nil {
		return nil, apperrors.InvalidInput(transcription.FormField, "unreadable file")
	}
	return &transcription.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Data:        data,
	}, nil
}

func readPart(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit+1))
}

// GetTranscript returns the rendered view, or 204 when there is none.
func (h *Handlers) GetTranscript(c *gin.Context) {
	t, ok := h.transcript(c)
	if !ok {
		return
	}
	if t == nil {
		server.RespondNoContent(c)
		return
	}
	server.RespondOK(c, h.deps.Display.Render(sessionID(c), t))
}

// Download serves transcript.txt.
func (h *Handlers) Download(c *gin.Context) {
	t, ok := h.transcript(c)
	if !ok {
		return
	}
	att, err := h.deps.Display.Download(c.Request.Context(), sessionID(c), t)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.Header("Content-Disposition", att.Disposition())
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, att.ContentType, att.Body)
}

// CopyReport is what the page sends after writing to its clipboard.
type CopyReport struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty" validate:"max=512"`
}

// CopyResponse tells the page how long to show the copied indicator.
type CopyResponse struct {
	Copied     bool  `json:"copied"`
	CopiedForM int64 `json:"copied_for_ms"`
}

// Copy records the outcome of a browser clipboard write.
func (h *Handlers) Copy(c *gin.Context) {
	var req CopyReport
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}
	t, ok := h.transcript(c)
	if !ok {
		return
	}

	var result display.Reported
	if !req.OK {
		result.Err = errors.New("browser clipboard write failed: " + req.Error)
	}
	err := h.deps.Display.CopyWith(c.Request.Context(), sessionID(c), t, result)
	if err != nil && t == nil {
		server.RespondWithError(c, err)
		return
	}
	resp := CopyResponse{Copied: err == nil}
	if err == nil {
		resp.CopiedForM = h.deps.Display.CopiedFor().Milliseconds()
	}
	server.RespondOK(c, resp)
}

// Events streams notices and transcript refreshes for the session.
func (h *Handlers) Events(c *gin.Context) {
	clientID := sse.ClientID(sessionID(c), uuid.NewString())
	sse.ServeSSE(h.deps.Hub, c.Writer, c.Request, clientID, h.deps.KeepAlive)
}
