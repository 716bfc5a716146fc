package client

import (
	"sort"
	"sync"

	"github.com/hackernews-go/app/internal/models"
)

// FeedCache is the client's local copy of a feed result. Mutations and
// subscription pushes are reconciled into it in place; every update
// commits a full snapshot under the lock.
type FeedCache struct {
	mu    sync.Mutex
	links []models.Link
	count int64
}

func NewFeedCache() *FeedCache {
	return &FeedCache{links: []models.Link{}}
}

// Store replaces the cached snapshot with a fresh feed result.
func (fc *FeedCache) Store(feed *models.Feed) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.links = append([]models.Link(nil), feed.Links...)
	fc.count = feed.Count
}

// Snapshot returns a copy of the cached links and the total count.
func (fc *FeedCache) Snapshot() ([]models.Link, int64) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([]models.Link(nil), fc.links...), fc.count
}

func (fc *FeedCache) Len() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.links)
}

// ReplaceVotes locates the cached link by id and swaps in the given
// vote list, leaving every other field untouched. Returns false when
// the link is not in the cache.
func (fc *FeedCache) ReplaceVotes(linkID int64, votes []models.Vote) bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	for i := range fc.links {
		if fc.links[i].LinkID == linkID {
			fc.links[i].Votes = append([]models.Vote(nil), votes...)
			return true
		}
	}
	return false
}

// MergeNewLink inserts the link at the head of the cached list unless
// an entry with the same id is already present, so duplicate delivery
// of a newLink event cannot duplicate the entry.
func (fc *FeedCache) MergeNewLink(link models.Link) bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	for i := range fc.links {
		if fc.links[i].LinkID == link.LinkID {
			return false
		}
	}
	fc.links = append([]models.Link{link}, fc.links...)
	fc.count++
	return true
}

// TopView returns the cached links ordered by descending vote count.
// The sort is stable: links with equal counts keep the relative order
// the store returned them in.
func (fc *FeedCache) TopView() []models.Link {
	links, _ := fc.Snapshot()
	sort.SliceStable(links, func(i, j int) bool {
		return len(links[i].Votes) > len(links[j].Votes)
	})
	return links
}
