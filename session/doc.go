// Package session identifies browser sessions with a signed cookie. The
// cookie holds an HS256 JWT whose subject is a random session id; every
// per-session slot in the application is keyed by that id.
package session
