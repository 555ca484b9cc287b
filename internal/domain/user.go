package domain

import "time"

// Role separates shoppers from back-office users.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Address is the postal address kept on a user profile.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// User is a registered storefront account.
type User struct {
	ID           string    `json:"id"`
	Fullname     string    `json:"fullname"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	Address      Address   `json:"address"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user may use the back-office.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
