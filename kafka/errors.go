package kafka

import "strings"

var connectionPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"no route to host",
	"network is unreachable",
	"broker not available",
	"leader not available",
	"dial tcp",
}

var permanentPatterns = []string{
	"message too large",
	"invalid topic",
	"unknown topic",
	"authorization failed",
	"sasl authentication failed",
}

func matchesAny(err error, patterns []string) bool {
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsConnectionError reports a broker connectivity failure.
func IsConnectionError(err error) bool {
	return err != nil && matchesAny(err, connectionPatterns)
}

// IsRetryableError reports whether a write may succeed if repeated.
// Errors that will fail the same way again are never retried.
func IsRetryableError(err error) bool {
	if err == nil || matchesAny(err, permanentPatterns) {
		return false
	}
	return true
}
