package domain

// KeyState is a key's position in its lifecycle. Only the transitions
// enumerated in lawfulTransitions are permitted; everything else is an
// InvalidTransitionError.
type KeyState string

const (
	KeyStatePending   KeyState = "pending"
	KeyStateActive    KeyState = "active"
	KeyStateRotated   KeyState = "rotated"
	KeyStateExpired   KeyState = "expired"
	KeyStateRevoked   KeyState = "revoked"
	KeyStateDestroyed KeyState = "destroyed"
)

// lawfulTransitions enumerates every permitted (from, to) pair:
//
//	Pending  -> Active, Destroyed
//	Active   -> Rotated, Revoked, Expired
//	Rotated  -> Expired, Active (rotation completion within the same id)
//	Expired  -> Destroyed
//	Revoked  -> Destroyed
//	Destroyed is terminal.
var lawfulTransitions = map[KeyState]map[KeyState]struct{}{
	KeyStatePending: {
		KeyStateActive:    {},
		KeyStateDestroyed: {},
	},
	KeyStateActive: {
		KeyStateRotated: {},
		KeyStateRevoked: {},
		KeyStateExpired: {},
	},
	KeyStateRotated: {
		KeyStateExpired: {},
		KeyStateActive:  {},
	},
	KeyStateExpired: {
		KeyStateDestroyed: {},
	},
	KeyStateRevoked: {
		KeyStateDestroyed: {},
	},
	KeyStateDestroyed: {},
}

// CanTransition reports whether moving from `from` to `to` is lawful.
func CanTransition(from, to KeyState) bool {
	targets, ok := lawfulTransitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// CanEncrypt holds iff the key is in the one state allowed to encrypt.
func (s KeyState) CanEncrypt() bool { return s == KeyStateActive }

// CanDecrypt holds for any state whose material is still considered live.
func (s KeyState) CanDecrypt() bool { return s == KeyStateActive || s == KeyStateRotated }
