// Package cache provides the stores used to suppress duplicate log records.
//
// A Store remembers keys for a time-to-live. Memory keeps them in process
// with optional LRU bounding; Redis shares them between processes using
// SET NX so that only the first process reporting an incident delivers it:
//
//	store := cache.NewRedis(client, cache.WithPrefix("app:dedup"))
//	seen, err := store.Remember(ctx, "ERROR:payment failed", time.Minute)
package cache
