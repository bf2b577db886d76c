// Package redis is the networked transcript backend. Client wraps go-redis,
// Component manages its lifecycle and TypedStore implements
// provider.ContextStore over JSON values:
//
//	store := redis.NewTypedStore[transcript.Record](comp.Client(), "voxscribe:transcript")
package redis
