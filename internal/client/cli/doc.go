// Package cli provides the interactive engram dashboard client.
//
// It wires configuration, the persisted session, the HTTP gateway and the
// auth, checkout and key controllers behind a small REPL. Typical flow:
// register or log in, inspect usage on the dashboard, manage the API key and
// upgrade the plan. Upgrading while logged out opens the auth prompt first
// and resumes the checkout once it succeeds.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
