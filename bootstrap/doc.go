// Package bootstrap wires configuration, logging and components into a
// runnable application. Run serves until a signal arrives. RunTask runs a
// one-shot job such as a CLI transcription with the same lifecycle.
package bootstrap
