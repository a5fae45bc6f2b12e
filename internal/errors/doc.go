// Package errors defines the coded, operator-facing errors of isomorph.
//
// Library packages return plain Go errors (prefetch.Error,
// store.SerializationError, router.MultiValidationError, ...). The server and
// CLI translate them with Classify into an *Error carrying a stable code, a
// category, an HTTP status and a hint, and print them with Format.
//
// Code ranges:
//
//	E001-E009  routing
//	E010-E019  data prefetch
//	E030-E039  serialization
//	E040-E049  hydration
//	E100-E119  route table
//	E120-E149  configuration
package errors
