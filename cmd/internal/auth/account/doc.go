// Package account implements the credential workflows: register, login,
// change password and delete account.
//
// Results are typed. Every failure is an *OpError whose Kind is one of the
// package sentinels, so callers pick a presentation with errors.Is and never
// inspect messages. The package has no HTTP knowledge.
//
// Each workflow call runs in a span named after it (account.Login, ...) on the
// tracer given with WithTracer.
package account
