/*
Package session implements learning session management.

A Manager starts and ends sessions, and records the conversation exchanged
within them. Read-modify-write cycles on a session are serialized in-process
with reference-counted mutexes and, when a DistributedLocker is configured,
across replicas as well.
*/
package session
