// Package password provides password hashing and verification for authgate.
//
// New hashes use bcrypt (cost 10 by default) or Argon2id in PHC string format.
// Verify picks the scheme from the hash prefix, so stored hashes of either kind
// keep working when the configured algorithm changes.
//
// Security notes:
// - Hash strings are treated as untrusted input during Verify; malformed or
//   unsupported hashes yield ErrInvalidHash and never a match.
// - Verification refuses hashes whose cost parameters exceed sane bounds.
// - Hasher bounds how many hash computations run at once.
package password
