// Package transcription turns an uploaded audio file into text.
//
// Service validates the upload (present, within the size limit), picks a
// backend through a provider.Manager and makes exactly one call. Backends
// live in subpackages:
//
//   - gemini: inline content generation (default)
//   - openai: the Whisper transcription endpoint via go-openai
//   - whisper: a self-hosted faster-whisper sidecar
package transcription
