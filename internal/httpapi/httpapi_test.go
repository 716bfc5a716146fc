package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackernews-go/app/internal/models"
	"github.com/hackernews-go/app/internal/pubsub"
	"github.com/hackernews-go/app/internal/repository"
	"github.com/hackernews-go/app/internal/service"
)

var testSecret = []byte("test-secret")

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo, err := repository.NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	hub := pubsub.NewHub()
	svc := service.New(repo, hub, testSecret)
	srv := httptest.NewServer(NewRouter(svc, hub, Config{JWTSecret: testSecret}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, token string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(encoded))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func signup(t *testing.T, srv *httptest.Server, email, name string) *models.AuthPayload {
	t.Helper()
	payload := &models.AuthPayload{}
	resp := postJSON(t, srv.URL+"/api/signup", "", map[string]string{
		"email": email, "password": "pw", "name": name,
	}, payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return payload
}

func TestHealth(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSignupValidation(t *testing.T) {
	srv := setupServer(t)

	resp := postJSON(t, srv.URL+"/api/signup", "", map[string]string{
		"email": "not-an-email", "password": "pw", "name": "Ann",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPostWithoutTokenFails(t *testing.T) {
	srv := setupServer(t)
	signup(t, srv, "a@x.com", "Ann")

	resp := postJSON(t, srv.URL+"/api/link/new", "", map[string]string{
		"url": "https://news.example", "description": "d",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// a garbage token is rejected the same way
	resp = postJSON(t, srv.URL+"/api/link/new", "garbage", map[string]string{
		"url": "https://news.example", "description": "d",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// and no record was created
	feedResp, err := http.Get(srv.URL + "/api/feed")
	require.NoError(t, err)
	defer feedResp.Body.Close()
	feed := models.Feed{}
	require.NoError(t, json.NewDecoder(feedResp.Body).Decode(&feed))
	assert.Zero(t, feed.Count)
}

// the end-to-end example: signup, post, vote, duplicate vote
func TestSignupPostVoteFlow(t *testing.T) {
	srv := setupServer(t)
	ann := signup(t, srv, "a@x.com", "Ann")

	link := models.Link{}
	resp := postJSON(t, srv.URL+"/api/link/new", ann.Token, map[string]string{
		"url": "u1", "description": "d1",
	}, &link)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotZero(t, link.LinkID)

	vote := models.Vote{}
	resp = postJSON(t, srv.URL+"/api/link/vote", ann.Token, map[string]int64{
		"link_id": link.LinkID,
	}, &vote)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, link.LinkID, vote.LinkID)

	resp = postJSON(t, srv.URL+"/api/link/vote", ann.Token, map[string]int64{
		"link_id": link.LinkID,
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, fmt.Sprintf("Already voted for link: %d", link.LinkID), body.Error)
}

func TestLoginAndFeed(t *testing.T) {
	srv := setupServer(t)
	ann := signup(t, srv, "a@x.com", "Ann")

	for i := 0; i < 3; i++ {
		resp := postJSON(t, srv.URL+"/api/link/new", ann.Token, map[string]string{
			"url": fmt.Sprintf("https://news.example/%d", i), "description": "d",
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	payload := models.AuthPayload{}
	resp := postJSON(t, srv.URL+"/api/login", "", map[string]string{
		"email": "a@x.com", "password": "pw",
	}, &payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, payload.Token)

	feedResp, err := http.Get(srv.URL + "/api/feed?first=2&skip=1")
	require.NoError(t, err)
	defer feedResp.Body.Close()
	feed := models.Feed{}
	require.NoError(t, json.NewDecoder(feedResp.Body).Decode(&feed))
	assert.Equal(t, int64(3), feed.Count)
	assert.Len(t, feed.Links, 2)

	badResp, err := http.Get(srv.URL + "/api/feed?orderBy=bogus")
	require.NoError(t, err)
	defer badResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)
}

func TestFeedDefaultPageSize(t *testing.T) {
	repo, err := repository.NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	hub := pubsub.NewHub()
	svc := service.New(repo, hub, testSecret)
	srv := httptest.NewServer(NewRouter(svc, hub, Config{JWTSecret: testSecret, PageSize: 2}))
	t.Cleanup(srv.Close)

	ann := signup(t, srv, "a@x.com", "Ann")
	for i := 0; i < 3; i++ {
		resp := postJSON(t, srv.URL+"/api/link/new", ann.Token, map[string]string{
			"url": fmt.Sprintf("https://news.example/%d", i), "description": "d",
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// no explicit first: the configured page size applies
	resp, err := http.Get(srv.URL + "/api/feed")
	require.NoError(t, err)
	defer resp.Body.Close()
	feed := models.Feed{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&feed))
	assert.Equal(t, int64(3), feed.Count)
	assert.Len(t, feed.Links, 2)
}

func TestLinkByID(t *testing.T) {
	srv := setupServer(t)
	ann := signup(t, srv, "a@x.com", "Ann")

	created := models.Link{}
	resp := postJSON(t, srv.URL+"/api/link/new", ann.Token, map[string]string{
		"url": "https://news.example", "description": "d",
	}, &created)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet,
		fmt.Sprintf("%s/api/link/%d", srv.URL, created.LinkID), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+ann.Token)
	getResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	got := models.Link{}
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&got))
	assert.Equal(t, created.LinkID, got.LinkID)
	assert.Equal(t, "Ann", got.PosterName())
}
