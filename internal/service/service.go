package service

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackernews-go/app/internal/models"
	"github.com/hackernews-go/app/internal/pubsub"
	"github.com/hackernews-go/app/internal/repository"
)

const tokenLifetime = 72 * time.Hour

type Service interface {
	Signup(email, password, name string) (*models.AuthPayload, error)
	Login(email, password string) (*models.AuthPayload, error)
	Post(url, description string, userID int64) (*models.Link, error)
	Vote(linkID, userID int64) (*models.Vote, error)
	Feed(p repository.FeedParams) (*models.Feed, error)
	GetLinkByID(linkID int64) (*models.Link, error)
	Close() error
}

type ServiceImpl struct {
	userRepo repository.UserRepository
	linkRepo repository.LinkRepository
	voteRepo repository.VoteRepository
	hub      *pubsub.Hub
	secret   []byte

	// now is swappable so tests can pin timestamps
	now func() time.Time
}

func New(repo repository.Repository, hub *pubsub.Hub, secret []byte) *ServiceImpl {
	return &ServiceImpl{
		userRepo: repo,
		linkRepo: repo,
		voteRepo: repo,
		hub:      hub,
		secret:   secret,
		now:      time.Now,
	}
}

// Signup hashes the password, creates the user and issues a signed token.
func (s *ServiceImpl) Signup(email, password, name string) (*models.AuthPayload, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{Email: email, Name: name, Password: string(hashed)}
	id, err := s.userRepo.CreateUser(user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, &ValidationError{Reason: "email already taken"}
	}
	if err != nil {
		return nil, err
	}
	user.UserID = id

	token, err := s.issueToken(id)
	if err != nil {
		return nil, err
	}
	return &models.AuthPayload{Token: token, User: &user}, nil
}

// Login checks the supplied credentials against the stored hash and
// issues a token identical in shape to Signup's.
func (s *ServiceImpl) Login(email, password string) (*models.AuthPayload, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &AuthError{Reason: "No such user found"}
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, &AuthError{Reason: "Invalid password"}
	}

	token, err := s.issueToken(user.UserID)
	if err != nil {
		return nil, err
	}
	return &models.AuthPayload{Token: token, User: user}, nil
}

// Post persists a link attributed to the caller, then publishes a
// newLink event. Publish happens strictly after the insert commits so
// subscribers never observe a link that failed to persist.
func (s *ServiceImpl) Post(url, description string, userID int64) (*models.Link, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &AuthError{Reason: "No such user found"}
	}
	if err != nil {
		return nil, err
	}

	link := models.Link{
		URL:         url,
		Description: description,
		CreatedAt:   s.now().Unix(),
		PostedBy:    user,
	}
	id, err := s.linkRepo.InsertLink(link)
	if err != nil {
		return nil, err
	}
	link.LinkID = id
	link.Votes = []models.Vote{}

	s.hub.Publish(pubsub.Event{Type: pubsub.TopicNewLink, Link: &link})
	log.Debug().Int64("link_id", id).Int64("user_id", userID).Msg("link posted")
	return &link, nil
}

// Vote records a single vote per (link, user). The existence pre-check
// gives the friendly error without burning an insert, but the unique
// index is the authority: a constraint violation at insert time maps to
// the same DuplicateVoteError.
func (s *ServiceImpl) Vote(linkID, userID int64) (*models.Vote, error) {
	if _, err := s.voteRepo.GetVote(linkID, userID); err == nil {
		return nil, &DuplicateVoteError{LinkID: linkID}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	id, err := s.voteRepo.InsertVote(linkID, userID)
	if errors.Is(err, repository.ErrDuplicateVote) {
		return nil, &DuplicateVoteError{LinkID: linkID}
	}
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	vote := models.Vote{VoteID: id, LinkID: linkID, UserID: userID, User: user}

	// the newVote payload carries the parent link with its current
	// vote list so subscribers can update counts without a refetch
	link, err := s.linkRepo.GetLinkByID(linkID)
	if err != nil {
		return nil, err
	}

	s.hub.Publish(pubsub.Event{Type: pubsub.TopicNewVote, Vote: &vote, Link: link})
	log.Debug().Int64("link_id", linkID).Int64("user_id", userID).Msg("vote cast")
	return &vote, nil
}

func (s *ServiceImpl) Feed(p repository.FeedParams) (*models.Feed, error) {
	links, count, err := s.linkRepo.FeedLinks(p)
	if errors.Is(err, repository.ErrBadOrderBy) {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if err != nil {
		return nil, err
	}
	return &models.Feed{Links: links, Count: count}, nil
}

func (s *ServiceImpl) GetLinkByID(linkID int64) (*models.Link, error) {
	return s.linkRepo.GetLinkByID(linkID)
}

func (s *ServiceImpl) Close() error {
	return s.linkRepo.Close()
}

func (s *ServiceImpl) issueToken(userID int64) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = userID
	claims["exp"] = s.now().Add(tokenLifetime).Unix()
	return token.SignedString(s.secret)
}
