// Package display renders the current transcript and implements the copy
// and download actions. Nothing is rendered until a transcript exists.
package display
