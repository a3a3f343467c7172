// Package chat is the caller-facing side of the tutor. It sanitizes the
// learner message, builds the initial state from the session, runs a graph
// and maps the final state to a {response: {sender, text}} reply.
//
// Internal failures are logged and replaced by a fixed apology; they are
// never echoed to the learner.
package chat
