// Package redis provides a Redis-backed session store and a distributed
// locker for running several service replicas against the same sessions.
package redis
