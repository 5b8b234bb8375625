package models

// User represents a registered account. Users are never updated or deleted
// by this service.
type User struct {
	ID       int64  `json:"id" db:"id"`
	Email    string `json:"email" db:"email"`
	Password string `json:"-" db:"password"` // bcrypt hash, never sent to client
}
