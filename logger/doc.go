// Package logger provides structured logging on top of zerolog.
//
// Loggers carry map fields rather than variadic key/values:
//
//	log := logger.NewDefault("voxscribe").WithComponent("form")
//	log.Info("transcript stored", map[string]interface{}{"session_id": id})
//
// Init configures the process-wide logger used by the package-level helpers.
package logger
