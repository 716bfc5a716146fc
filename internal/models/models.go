// this file defines the data structures used throughout the system
package models

type User struct {
	UserID   int64  `json:"id" db:"user_id"`
	Email    string `json:"email" db:"email"`
	Name     string `json:"name" db:"name"`
	Password string `json:"-" db:"password"`
}

type Link struct {
	LinkID      int64  `json:"id" db:"link_id"`
	URL         string `json:"url" db:"url"`
	Description string `json:"description" db:"description"`
	CreatedAt   int64  `json:"createdAt" db:"created_at"`
	PostedBy    *User  `json:"postedBy,omitempty"`
	Votes       []Vote `json:"votes"`
}

type Vote struct {
	VoteID int64 `json:"id" db:"vote_id"`
	LinkID int64 `json:"linkId" db:"link_id"`
	UserID int64 `json:"userId" db:"user_id"`
	User   *User `json:"user,omitempty"`
}

type Feed struct {
	Links []Link `json:"links"`
	Count int64  `json:"count"`
}

type AuthPayload struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// PosterName returns the display name of the submitter, or "Unknown"
// for links with no owning user.
func (l *Link) PosterName() string {
	if l.PostedBy == nil {
		return "Unknown"
	}
	return l.PostedBy.Name
}
