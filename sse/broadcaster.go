package sse

// Broadcaster delivers events to clients whose id matches a glob pattern.
type Broadcaster interface {
	Broadcast(pattern string, ev Event)
}

// ClientID builds the id for one connection of a browser session.
func ClientID(sessionID, connID string) string {
	return "session:" + sessionID + ":" + connID
}

// SessionPattern matches every connection of a browser session.
func SessionPattern(sessionID string) string {
	return "session:" + sessionID + ":*"
}
