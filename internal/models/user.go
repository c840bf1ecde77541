package models

// User mirrors the remote API's user resource
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// UserInput is the payload for create and full update. It never carries the ID.
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// UserPatch is the payload for a partial update; nil fields are not sent
type UserPatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Input returns the create/update payload for an existing user
func (u User) Input() UserInput {
	active := u.IsActive
	return UserInput{
		Name:     u.Name,
		Email:    u.Email,
		IsActive: &active,
	}
}

// Bool returns a pointer to b
func Bool(b bool) *bool {
	return &b
}

// String returns a pointer to s
func String(s string) *string {
	return &s
}
