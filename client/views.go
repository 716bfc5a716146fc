package client

import (
	"github.com/hackernews-go/app/internal/models"
	"github.com/hackernews-go/app/internal/repository"
)

// NewView fetches one page of the newest-first feed. Pages are
// 1-indexed; a page below 1 or past the last page is clamped rather
// than treated as an error. The page actually fetched is returned
// alongside the feed.
func (c *Client) NewView(page, pageSize int64) (*models.Feed, int64, error) {
	if pageSize <= 0 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}

	fetch := func(page int64) (*models.Feed, error) {
		return c.Feed(repository.FeedParams{
			Skip:    (page - 1) * pageSize,
			First:   pageSize,
			OrderBy: "createdAt_DESC",
		})
	}

	feed, err := fetch(page)
	if err != nil {
		return nil, 0, err
	}

	// past the last page: clamp and refetch
	if len(feed.Links) == 0 && feed.Count > 0 && page > 1 {
		last := (feed.Count + pageSize - 1) / pageSize
		if page > last {
			page = last
			feed, err = fetch(page)
			if err != nil {
				return nil, 0, err
			}
		}
	}
	return feed, page, nil
}
