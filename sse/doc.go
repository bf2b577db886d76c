// Package sse pushes notices and transcript refreshes to the page.
//
// Client ids have the form "session:{session}:{conn}" so one Broadcast
// with SessionPattern reaches every open tab of a browser session.
package sse
