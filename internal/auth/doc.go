// Package auth provides bearer-token authentication for the designer API.
//
// Tokens are HS256 JWTs carrying a subject (the opaque owner id stored on
// projects) and a role. They are issued offline by `designer token` and
// validated by signature only; there is no user database.
//
// Two roles exist. A user sees and edits only the projects it owns. An
// admin sees every project.
package auth
