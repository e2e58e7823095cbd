package domain

import "time"

// KeyMetadata is the full record the keystore façade reads and writes as a
// whole through the storage interface. Invariant: Versions always contains
// an entry whose Version equals CurrentVersion.
type KeyMetadata struct {
	ID       KeyId
	Name     string
	KeyType  KeyType
	State    KeyState
	PolicyID *PolicyId
	ParentID *KeyId

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ActivatedAt *time.Time
	RotatedAt   *time.Time
	RevokedAt   *time.Time
	ExpiredAt   *time.Time
	DestroyedAt *time.Time

	Versions       []KeyVersion
	CurrentVersion uint
	UsageCount     uint64
	Tags           map[string]string
}

// Transition moves the key to target if lawful, stamping UpdatedAt. It
// returns an *InvalidTransitionError (matching ErrInvalidTransition via
// errors.Is) otherwise, and leaves the metadata unmodified on rejection.
func (m *KeyMetadata) Transition(target KeyState, now time.Time) error {
	if !CanTransition(m.State, target) {
		return &InvalidTransitionError{From: m.State, To: target}
	}
	m.State = target
	m.UpdatedAt = now
	return nil
}

// CurrentKeyVersion returns the version whose number equals CurrentVersion.
func (m *KeyMetadata) CurrentKeyVersion() (*KeyVersion, bool) {
	for i := range m.Versions {
		if m.Versions[i].Version == m.CurrentVersion {
			return &m.Versions[i], true
		}
	}
	return nil, false
}

// VersionByNumber returns the version matching the given number, if any.
func (m *KeyMetadata) VersionByNumber(version uint) (*KeyVersion, bool) {
	for i := range m.Versions {
		if m.Versions[i].Version == version {
			return &m.Versions[i], true
		}
	}
	return nil, false
}

// CanEncrypt reports whether the key's current state permits encryption.
func (m *KeyMetadata) CanEncrypt() bool { return m.State.CanEncrypt() }

// CanDecrypt reports whether the key's current state permits decryption.
func (m *KeyMetadata) CanDecrypt() bool { return m.State.CanDecrypt() }
