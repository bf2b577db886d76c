package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
)

// Request errors
const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Transcription errors
const (
	// ErrCodeNoFile means the upload carried no audio part.
	ErrCodeNoFile ErrorCode = "NO_FILE"
	// ErrCodeFileTooLarge means the audio exceeded the size limit.
	ErrCodeFileTooLarge ErrorCode = "FILE_TOO_LARGE"
	// ErrCodeSpeechUnsupported means the client has no speech recognizer.
	ErrCodeSpeechUnsupported ErrorCode = "SPEECH_UNSUPPORTED"
	// ErrCodeInvalidTransition means a dictation event arrived in a state that cannot accept it.
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
)

// Internal errors
const (
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeStorage         ErrorCode = "STORAGE_ERROR"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
	ErrCodeStorage:            true,
	ErrCodeExternalService:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
