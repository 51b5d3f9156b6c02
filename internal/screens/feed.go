package screens

import (
	"context"

	"github.com/isaac-const/upple/internal/listview"
	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/remote"
)

// weeklyRankingSize is how many podium entries the home screen shows.
const weeklyRankingSize = 3

// Feed is the home screen: the weekly ranking podium on top of the full
// recent-posts list.
type Feed struct {
	posts remote.Posts

	Ranking listview.List[models.RankingItem]
	Posts   listview.List[models.Post]
}

func NewFeed(posts remote.Posts) *Feed {
	return &Feed{posts: posts}
}

// Refresh re-fetches both sections. Either fetch failing leaves the
// previously shown data in place.
func (f *Feed) Refresh(ctx context.Context) error {
	ranking, err := f.posts.WeeklyRanking(ctx, weeklyRankingSize)
	if err != nil {
		return err
	}
	posts, err := f.posts.ListPosts(ctx, "")
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	f.Ranking.Replace(ranking)
	f.Posts.Replace(posts)
	return nil
}
