// Package accounts implements a multi-user account backend: registration,
// credential login, a per-user session token registry, profile management,
// avatar storage, and transactional email notifications.
//
// Sessions:
//   - Every successful registration or login mints a fresh JWT and appends it
//     to the user's session registry. A request is authenticated only when its
//     bearer token both verifies against the signing key and is still a member
//     of that registry, so revocation is immediate and per-device.
//   - RevokeCurrent removes a single token (logout on one device), RevokeAll
//     clears the registry (logout everywhere), and account deletion drops the
//     registry with the user row.
//
// Persistence:
//   - Users and SessionTokens are Bun models. RepositoryManager wires the
//     repositories over a shared *bun.DB, and CreateSchema installs the tables
//     on boot.
//
// Notifications:
//   - Mailer implementations run best-effort off the request path. Failures
//     are logged, never surfaced to the client.
package accounts
