// Package accounts provides a user-account backend: registration,
// password authentication, and self-service account mutations, all built
// around self-invalidating lifecycle tokens.
//
// Lifecycle tokens:
//   - Every email-verification, password-reset, and email-change link carries
//     a signed token whose secret is derived from current account state. The
//     verification token is signed with the global signing key; reset tokens
//     are signed with the account's current password hash; email-change
//     tokens with the account's current email address.
//   - Completing a flow rotates the very value the token was signed with, so
//     every other outstanding token of that class stops verifying. There is
//     no server-side token table and nothing to revoke.
//
// Repositories:
//   - Accounts and Roles are persisted via Bun. The lifecycle controller only
//     sees the narrow AccountStore interface, so tests and alternative
//     backends can swap the storage layer without touching the flows.
//
// HTTP:
//   - RegisterRoutes wires a JSON controller onto a go-router Router. Routes
//     are composed from explicit middleware (RequireAuth, RequireRoles); no
//     reflective guards.
package accounts
