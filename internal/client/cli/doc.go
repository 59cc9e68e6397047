// Package cli provides the interactive mobapp command-line client.
//
// It wires configuration, the persisted key/value store, the REST gateway,
// the auth service and the session store, then serves a REPL whose prompt
// and command set follow the root presentation mode: the auth screen while
// signed out and the main screen while signed in.
//
// Key features:
//   - Login / Register / Logout
//   - Password reset request and confirmation
//   - Profile lookup through the authenticated gateway
//   - Session status with access token lifetime
//   - Local error log listing, export and clearing
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
