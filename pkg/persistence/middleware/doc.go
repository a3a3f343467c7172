// Package middleware decorates a ports.SessionStore.
//
// NewEncryptionMiddleware seals each session with AES-256-GCM and supports key
// rotation through fallback keys. NewPIIMiddleware masks e-mail addresses,
// phone numbers or any configured pattern in the conversation history before
// it is stored. Chain them with the PII middleware outermost so the encrypted
// body holds the masked text.
package middleware
