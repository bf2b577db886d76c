// Package notice carries transient user notifications (toasts). The web
// surface delivers them over server-sent events with Stream; the CLI uses
// Desktop; tests use Recorder.
package notice
