package store

import (
	"context"
	"database/sql"

	"github.com/isaac-const/upple/internal/models"
)

// InsertReport records a report. There is no uniqueness: reporting the
// same post twice creates two rows.
func (s *Store) InsertReport(ctx context.Context, postID, reporterID string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO reports (post_id, reporter_id) VALUES ($1, $2)`,
		postID, reporterID)
	return err
}

// ListReports returns every report newest first with the reported post and
// the reporter embedded. The post side is a left join so a report whose
// post vanished mid-request still renders, with Post nil.
func (s *Store) ListReports(ctx context.Context) ([]models.Report, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT r.id, r.created_at,
       p.id, p.name, COALESCE(p.image_url, ''),
       pr.id, pr.username
  FROM reports r
  LEFT JOIN posts p ON p.id = r.post_id
  JOIN profiles pr ON pr.id = r.reporter_id
 ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var (
			rep      models.Report
			postID   sql.NullString
			postName sql.NullString
			imageURL sql.NullString
		)
		if err := rows.Scan(&rep.ID, &rep.CreatedAt,
			&postID, &postName, &imageURL,
			&rep.Reporter.ID, &rep.Reporter.Username); err != nil {
			return nil, err
		}
		if postID.Valid {
			rep.Post = &models.ReportedPost{
				ID:       postID.String,
				Name:     postName.String,
				ImageURL: imageURL.String,
			}
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}
