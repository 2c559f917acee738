// Package models defines the core data structures shared by the profile
// panel and the account backend.
package models

import "time"

// User represents the account record of a signed-in user.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"_id"`
	// Username is the public name chosen by the user.
	Username string `json:"username"`
	// Email is the contact address of the user.
	Email string `json:"email"`
	// ProfilePicture is the URL of the user's avatar image.
	ProfilePicture string `json:"profilePicture"`
	// IsAdmin marks dashboard administrators.
	IsAdmin bool `json:"isAdmin"`
	// CreatedAt is the account creation time.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the time of the last successful update.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Draft field names.
const (
	FieldUsername       = "username"
	FieldEmail          = "email"
	FieldPassword       = "password"
	FieldProfilePicture = "profilePicture"
)

// Draft maps a field name to its pending new value. An empty draft means
// there are no pending changes.
type Draft map[string]string

// Clone returns an independent copy of the draft.
func (d Draft) Clone() Draft {
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// ImageFile is a locally selected image candidate.
type ImageFile struct {
	// Name is the base file name.
	Name string
	// Size is the size of the file in bytes.
	Size int64
	// ContentType is the detected MIME type, e.g. "image/png".
	ContentType string
	// Data holds the file content. It may be nil when the file was rejected
	// before being read.
	Data []byte
}

// NewImageFile builds an ImageFile whose Size matches the content length.
func NewImageFile(name, contentType string, data []byte) *ImageFile {
	return &ImageFile{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentType,
		Data:        data,
	}
}

// UserUpdate holds the columns of an account update. Nil fields are left
// unchanged.
type UserUpdate struct {
	Username       *string
	Email          *string
	PasswordHash   *string
	ProfilePicture *string
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.PasswordHash == nil && u.ProfilePicture == nil
}
