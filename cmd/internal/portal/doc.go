// Package portal serves the front-desk HTTP surface: login/logout, the
// session snapshot endpoint, QR attendance check-in, the authenticated
// reverse proxy to the academy backend, and the WebSocket session feed.
//
// The portal holds exactly one operator session per process. Handlers read
// state through Sessions.Snapshot and never cache token or permissions
// across requests.
package portal
