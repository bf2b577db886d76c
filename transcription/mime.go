package transcription

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

// DetectMIME returns the declared media type without parameters, or the
// sniffed type when none (or only octet-stream) was declared.
func DetectMIME(declared string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != octetStream {
		return mt
	}
	return mimetype.Detect(data).String()
}

// ExtensionFor returns a file extension for mt, including the dot, or
// ".bin" when unknown.
func ExtensionFor(mt string) string {
	if m := mimetype.Lookup(mt); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	if i := strings.IndexByte(mt, '/'); i >= 0 && i < len(mt)-1 {
		return "." + strings.TrimPrefix(mt[i+1:], "x-")
	}
	return ".bin"
}
