package sse

import (
	"fmt"
	"net/http"
	"time"
)

// DefaultKeepAlive stays below common proxy idle timeouts.
const DefaultKeepAlive = 30 * time.Second

// ServeSSE streams events for clientID until the request context ends or
// the hub closes the client.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, keepAlive time.Duration) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}

	// Long-lived; the server WriteTimeout must not cut it off.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	client := NewClient(clientID)
	if !hub.Register(client) {
		http.Error(w, "event stream unavailable", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	writeEvent(w, Event{Name: EventConnected, Data: []byte(`{"client_id":"` + clientID + `"}`)})
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			writeEvent(w, ev)
			flusher.Flush()
		case <-ticker.C:
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev Event) {
	if ev.Name != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", ev.Name)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", ev.Data)
}
