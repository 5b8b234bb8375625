package models

import "time"

// Post is the single CRUD resource. Posts are not scoped to a user.
type Post struct {
	ID        int64     `json:"id" db:"id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DeleteResult is the raw outcome of a bulk delete statement.
type DeleteResult struct {
	Command  string `json:"command"`
	RowCount int64  `json:"rowCount"`
}
