// Package encryption seals transcript text at rest.
//
//	s, err := encryption.New(cfg.EncryptionKey)
//	sealed, err := s.Seal(text, sessionID)
//	text, err = s.Open(sealed, sessionID)
package encryption
