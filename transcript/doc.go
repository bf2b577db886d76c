// Package transcript is the last-write-wins slot holding the current
// transcript of each browser session.
//
// The slot lives in any provider.ContextStore: the in-process MemoryStore
// by default, or redis.TypedStore so several server processes share it.
// Text can be sealed at rest with an encryption.Sealer.
package transcript
