package transcript

import "errors"

var errSealedNoKey = errors.New("transcript is sealed but no encryption key is configured")
