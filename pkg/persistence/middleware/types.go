package middleware

import "github.com/aretw0/tutorgraph/pkg/ports"

// Middleware allows wrapping a SessionStore to add behavior.
type Middleware func(ports.SessionStore) ports.SessionStore

// Chain wraps store with mws. The first middleware is the outermost.
func Chain(store ports.SessionStore, mws ...Middleware) ports.SessionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
