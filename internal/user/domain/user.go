package domain

import "time"

type ID int64

type User struct {
	ID           ID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
}

// Identity is the public view of a user attached to authenticated requests.
type Identity struct {
	ID       ID
	Username string
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username}
}
