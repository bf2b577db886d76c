// Package util holds small parsing helpers shared by config and handlers.
package util
