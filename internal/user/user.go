package user

import "time"

// User is the directory entry used to show who placed an order. It is a read
// model synced from verified token claims; accounts themselves live elsewhere.
type User struct {
	ID        string    `json:"_id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	IsAdmin   bool      `json:"isAdmin" bson:"isAdmin"`
	UpdatedAt time.Time `json:"-" bson:"updatedAt"`
}

// Identity is the caller as asserted by the bearer token.
type Identity struct {
	UserID  string
	Name    string
	Email   string
	IsAdmin bool
}

func (i Identity) Profile() User {
	return User{ID: i.UserID, Name: i.Name, Email: i.Email, IsAdmin: i.IsAdmin}
}
