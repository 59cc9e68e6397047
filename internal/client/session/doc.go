// Package session owns the client's authentication state.
//
// A single Store holds the Session value and is the only thing allowed to
// change it, through four operations: CheckStoredSession, Login, Register
// and Logout. Readers take snapshots with Store.Session or follow changes
// with Store.Subscribe.
//
// States:
//
//	Unknown ──check/login/register──▶ Unauthenticated ◀──logout/expiry── Authenticated
//	                                         └────────login/register───────────▲
//
// Unknown exists only until the first operation completes. IsLoading is true
// while any operation is in flight. When operations overlap, the one that
// completes last determines both the Session and the persisted keys.
//
// Presentation maps a Session onto the root screen to show.
package session
