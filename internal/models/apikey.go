package models

import "time"

// APIKey is a service credential owned by a user. The secret itself is never
// stored; only its digest and a short display prefix are kept.
type APIKey struct {
	ID        int64      `json:"id"`
	KeyHash   string     `json:"-"`
	KeyPrefix string     `json:"key_prefix"`
	Name      string     `json:"name"`
	UserID    *int64     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at"`
}

// Active reports whether the key may still authorize requests.
func (k APIKey) Active() bool {
	return k.RevokedAt == nil
}
