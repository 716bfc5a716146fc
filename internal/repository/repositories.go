package repository

import (
	"errors"
	"fmt"

	"github.com/hackernews-go/app/internal/models"
)

// Sentinel errors surfaced by the store implementations. Uniqueness
// violations are reported from the insert itself so callers can treat
// the database constraint as the authority, not any pre-check.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already taken")
	ErrDuplicateVote  = errors.New("vote already exists")
	ErrBadOrderBy     = errors.New("unsupported orderBy")
)

// FeedParams carries pagination, ordering and filtering for the feed.
// Skip/First follow offset/limit semantics; First <= 0 means no limit.
type FeedParams struct {
	Filter  string
	Skip    int64
	First   int64
	OrderBy string
}

// orderClause maps the public orderBy vocabulary onto SQL. Anything
// outside the whitelist is rejected rather than interpolated.
func (p FeedParams) orderClause() (string, error) {
	switch p.OrderBy {
	case "", "createdAt_DESC":
		return "order by l.created_at desc, l.link_id desc", nil
	case "createdAt_ASC":
		return "order by l.created_at asc, l.link_id asc", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBadOrderBy, p.OrderBy)
	}
}

type UserRepository interface {
	CreateUser(user models.User) (int64, error)
	GetUserByID(id int64) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	Close() error
}

type LinkRepository interface {
	InsertLink(link models.Link) (int64, error)
	GetLinkByID(id int64) (*models.Link, error)
	FeedLinks(p FeedParams) ([]models.Link, int64, error)
	VotesForLink(linkID int64) ([]models.Vote, error)
	Close() error
}

type VoteRepository interface {
	InsertVote(linkID, userID int64) (int64, error)
	GetVote(linkID, userID int64) (*models.Vote, error)
	Close() error
}

// Repository is the combined store handle the service layer works with.
type Repository interface {
	UserRepository
	LinkRepository
	VoteRepository
}
