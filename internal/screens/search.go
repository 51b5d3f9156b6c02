package screens

import (
	"context"
	"strings"
	"sync"

	"github.com/isaac-const/upple/internal/listview"
	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/remote"
)

// Search is the project search screen. Matching happens on the service,
// case-insensitively over both name and description.
type Search struct {
	posts remote.Posts

	Results listview.List[models.Post]

	mu       sync.Mutex
	searched bool
}

func NewSearch(posts remote.Posts) *Search {
	return &Search{posts: posts}
}

// Run executes a search. A blank query is a no-op: the previous results
// stay on screen and no request is made.
func (s *Search) Run(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	results, err := s.posts.ListPosts(ctx, query)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.Results.Replace(results)
	s.mu.Lock()
	s.searched = true
	s.mu.Unlock()
	return nil
}

// Searched reports whether at least one search has completed, so the view
// can tell "no results" apart from "not searched yet".
func (s *Search) Searched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searched
}
