/*
Package ports defines the driven ports (interfaces) of the tutoring service.

These interfaces decouple the session handling from external implementations,
allowing the service to run against memory or Redis backends.

# Key Interfaces

  - SessionStore: Responsible for persisting and loading learning sessions.
  - DistributedLocker: Provides distributed locking for handling concurrent session access across replicas.

A reusable contract suite for SessionStore adapters lives in the tests subpackage.
*/
package ports
