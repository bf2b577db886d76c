// Package form implements the upload/record form: the file path through
// the transcription action and the voice path through the dictation
// machine, with a per-session busy guard between them.
package form
