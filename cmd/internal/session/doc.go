// Package session owns the portal's process-wide authentication and
// authorization state: the bearer token, the operator role, and the granted
// permission set.
//
// The service is constructed and injected explicitly; it hydrates from
// durable storage at startup and is the single writer of session state.
// Token and role change together (login, logout); permissions are refreshed
// asynchronously from the backend and may lag behind the token. A refresh
// captures the token that triggered it and its result is discarded if the
// session token has changed by the time it resolves, so a logout or a rapid
// re-login always wins over an in-flight response.
//
// Permission refresh is fail-closed: on any fetch failure the set is
// replaced with the empty set, which hides privileged UI rather than
// granting anything by omission.
package session
