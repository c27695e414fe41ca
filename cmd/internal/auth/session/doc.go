// Package session issues the signed session token handed out on login and
// manages the cookie that carries it.
//
// Tokens are HS256 JWTs with the claims userId, username and nome, plus
// sub/iat/exp and an optional iss. They are issued here and verified only by
// downstream services sharing AUTHGATE_JWT_SECRET. There is no refresh flow
// and no server-side session state.
package session
