package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/isaac-const/upple/internal/models"
)

const postColumns = `
  p.id, p.user_id, p.name, p.description, p.type,
  COALESCE(p.image_url, ''), COALESCE(p.github_link, ''), COALESCE(p.official_link, ''),
  p.created_at,
  COALESCE(pr.username, ''),
  (SELECT COUNT(*) FROM votes v    WHERE v.post_id = p.id) AS vote_count,
  (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
`

func scanPost(row interface{ Scan(...any) error }) (models.Post, error) {
	var p models.Post
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Type,
		&p.ImageURL, &p.GithubLink, &p.OfficialLink,
		&p.CreatedAt, &p.Author, &p.VoteCount, &p.CommentCount,
	)
	return p, err
}

// ListPosts returns every post newest first. A non-empty search term is a
// case-insensitive substring match over name OR description.
func (s *Store) ListPosts(ctx context.Context, search string) ([]models.Post, error) {
	var (
		args []any
		sb   strings.Builder
	)
	sb.WriteString(`SELECT` + postColumns + `
FROM posts p
LEFT JOIN profiles pr ON pr.id = p.user_id
`)
	if term := strings.TrimSpace(search); term != "" {
		sb.WriteString(`WHERE (p.name ILIKE $1 OR p.description ILIKE $1)
`)
		args = append(args, "%"+term+"%")
	}
	sb.WriteString(`ORDER BY p.created_at DESC`)

	return s.queryPosts(ctx, sb.String(), args...)
}

func (s *Store) ListPostsByOwner(ctx context.Context, userID string) ([]models.Post, error) {
	return s.queryPosts(ctx, `SELECT`+postColumns+`
FROM posts p
LEFT JOIN profiles pr ON pr.id = p.user_id
WHERE p.user_id = $1
ORDER BY p.created_at DESC`, userID)
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT`+postColumns+`
FROM posts p
LEFT JOIN profiles pr ON pr.id = p.user_id
WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePost inserts a post owned by ownerID; only the insertable fields
// of in are read.
func (s *Store) CreatePost(ctx context.Context, ownerID string, in models.Post) (*models.Post, error) {
	var id string
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO posts (user_id, name, description, type, image_url, github_link, official_link)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
RETURNING id`,
		ownerID, in.Name, in.Description, in.Type, in.ImageURL, in.GithubLink, in.OfficialLink,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	return s.GetPost(ctx, id)
}

func (s *Store) UpdatePost(ctx context.Context, id string, in models.Post) error {
	res, err := s.DB.ExecContext(ctx, `
UPDATE posts
   SET name = $2, description = $3, type = $4,
       image_url = NULLIF($5, ''), github_link = NULLIF($6, ''), official_link = NULLIF($7, '')
 WHERE id = $1`,
		id, in.Name, in.Description, in.Type, in.ImageURL, in.GithubLink, in.OfficialLink)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes the row; votes, comments and reports cascade in the
// database. Stored images do not cascade and are the caller's problem.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// WeeklyRanking lists the posts with the most votes cast in the trailing
// seven days.
func (s *Store) WeeklyRanking(ctx context.Context, limit int) ([]models.RankingItem, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT p.id, p.name, COALESCE(p.image_url, ''), COUNT(v.id) AS vote_count
  FROM posts p
  JOIN votes v ON v.post_id = p.id
 WHERE v.created_at > now() - interval '7 days'
 GROUP BY p.id, p.name, p.image_url, p.created_at
 ORDER BY vote_count DESC, p.created_at DESC
 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.RankingItem
	for rows.Next() {
		var it models.RankingItem
		if err := rows.Scan(&it.ID, &it.Name, &it.ImageURL, &it.VoteCount); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
