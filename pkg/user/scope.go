package user

// Scope identifies whose records an operation touches. An authenticated
// session carries the account UID; everything else collapses into a single
// anonymous on-device identity. Storage keys are derived from the scope and
// nowhere else.
type Scope struct {
	uid string
}

// localKey is the sentinel storage key for the anonymous on-device identity.
const localKey = "local"

func Authenticated(uid string) Scope {
	if uid == "" {
		return AnonymousLocal()
	}
	return Scope{uid: uid}
}

func AnonymousLocal() Scope {
	return Scope{}
}

// Key returns the storage-key component for this scope: the account UID, or
// "local" for the anonymous identity.
func (s Scope) Key() string {
	if s.uid == "" {
		return localKey
	}
	return s.uid
}

// IsLocal reports whether this scope is the anonymous on-device identity.
// Local scopes never touch a remote backend.
func (s Scope) IsLocal() bool {
	return s.uid == ""
}

// IsLocalKey reports whether a storage key belongs to the anonymous
// on-device identity. Repositories that only see the derived key use this
// to keep local data off the remote backend.
func IsLocalKey(key string) bool {
	return key == localKey
}
