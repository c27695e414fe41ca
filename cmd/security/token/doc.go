// Package token provides the signing primitive for session tokens.
//
// Tokens are compact JWTs signed with HS256. The package only signs; this
// service never verifies the tokens it hands out. Downstream services that
// share the secret do.
//
// Environment:
// - AUTHGATE_JWT_SECRET: symmetric signing key. Required, at least 32 bytes
//   after trimming.
package token
