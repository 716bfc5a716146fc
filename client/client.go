// Package client is a typed Go client for the API: it issues the five
// operations, keeps a reconciled local copy of the feed, and consumes
// the subscription socket.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hackernews-go/app/internal/models"
	"github.com/hackernews-go/app/internal/repository"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Token is set by Signup/Login and sent as a bearer header on
	// every authenticated operation.
	Token string
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: http.DefaultClient,
	}
}

// APIError is a rejected operation, carrying the HTTP status and the
// server's error message verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// IsDuplicateVote reports whether err is the server refusing a second
// vote on the same link.
func IsDuplicateVote(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusConflict
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusUnauthorized
}

func (c *Client) Signup(email, password, name string) (*models.AuthPayload, error) {
	payload := &models.AuthPayload{}
	err := c.post("/api/signup", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, payload)
	if err != nil {
		return nil, err
	}
	c.Token = payload.Token
	return payload, nil
}

func (c *Client) Login(email, password string) (*models.AuthPayload, error) {
	payload := &models.AuthPayload{}
	err := c.post("/api/login", map[string]string{
		"email":    email,
		"password": password,
	}, payload)
	if err != nil {
		return nil, err
	}
	c.Token = payload.Token
	return payload, nil
}

func (c *Client) Post(linkURL, description string) (*models.Link, error) {
	link := &models.Link{}
	err := c.post("/api/link/new", map[string]string{
		"url":         linkURL,
		"description": description,
	}, link)
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (c *Client) Vote(linkID int64) (*models.Vote, error) {
	vote := &models.Vote{}
	err := c.post("/api/link/vote", map[string]int64{"link_id": linkID}, vote)
	if err != nil {
		return nil, err
	}
	return vote, nil
}

func (c *Client) Link(linkID int64) (*models.Link, error) {
	link := &models.Link{}
	if err := c.get("/api/link/"+strconv.FormatInt(linkID, 10), nil, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (c *Client) Feed(p repository.FeedParams) (*models.Feed, error) {
	q := url.Values{}
	if p.Filter != "" {
		q.Set("filter", p.Filter)
	}
	if p.Skip > 0 {
		q.Set("skip", strconv.FormatInt(p.Skip, 10))
	}
	if p.First > 0 {
		q.Set("first", strconv.FormatInt(p.First, 10))
	}
	if p.OrderBy != "" {
		q.Set("orderBy", p.OrderBy)
	}

	feed := &models.Feed{}
	if err := c.get("/api/feed", q, feed); err != nil {
		return nil, err
	}
	return feed, nil
}

func (c *Client) post(path string, body, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(path string, query url.Values, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil {
			apiErr.Message = body.Error
			if apiErr.Message == "" {
				apiErr.Message = body.Message
			}
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
