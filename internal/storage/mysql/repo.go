package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"festival_reviews/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) CreateReview(ctx context.Context, rv domain.Review) error {
	_, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.ID,
		rv.SubjectID,
		string(rv.SubjectType),
		rv.ReviewerName,
		rv.Rating,
		valStr(rv.Comment),
		rv.CreatedAt,
		rv.UpdatedAt,
	)
	return err
}

func (r *Repo) UpdateReview(ctx context.Context, rv domain.Review) error {
	res, err := r.db.ExecContext(ctx, updateReviewSQL,
		rv.SubjectID,
		string(rv.SubjectType),
		rv.ReviewerName,
		rv.Rating,
		valStr(rv.Comment),
		rv.UpdatedAt,
		rv.ID,
	)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *Repo) DeleteReview(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteReviewSQL, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// mustAffect maps "no row touched" to ErrNotFound. MySQL reports 0 affected
// rows for an UPDATE that changes nothing, so the DSN should carry
// clientFoundRows=true.
func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReview(s scanner) (domain.Review, error) {
	var rv domain.Review
	var st string
	var comment sql.NullString
	if err := s.Scan(
		&rv.ID,
		&rv.SubjectID,
		&st,
		&rv.ReviewerName,
		&rv.Rating,
		&comment,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return domain.Review{}, err
	}
	rv.SubjectType = domain.SubjectType(st)
	if comment.Valid {
		rv.Comment = comment.String
	}
	rv.CreatedAt = rv.CreatedAt.UTC()
	rv.UpdatedAt = rv.UpdatedAt.UTC()
	return rv, nil
}

func (r *Repo) GetReview(ctx context.Context, id string) (domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, getReviewSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, err
}

// buildListQuery appends one predicate per non-zero field of q.
func buildListQuery(q domain.ReviewQuery) (string, []any) {
	var where []string
	var args []any
	if q.SubjectType != "" {
		where = append(where, "subject_type = ?")
		args = append(args, string(q.SubjectType))
	}
	if q.SubjectID != "" {
		where = append(where, "subject_id = ?")
		args = append(args, q.SubjectID)
	}
	if q.ReviewerName != "" {
		where = append(where, "reviewer_name = ?")
		args = append(args, q.ReviewerName)
	}
	if q.Rating != 0 {
		where = append(where, "rating = ?")
		args = append(args, q.Rating)
	}
	if q.MinRating != 0 {
		where = append(where, "rating >= ?")
		args = append(args, q.MinRating)
	}
	var b strings.Builder
	b.WriteString(listReviewsPrefix)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(listReviewsOrder)
	return b.String(), args
}

func (r *Repo) ListReviews(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
	query, args := buildListQuery(q)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) SubjectStats(ctx context.Context, subjectID string, t domain.SubjectType) (domain.SubjectStats, error) {
	st := domain.SubjectStats{SubjectID: subjectID, SubjectType: t}
	if err := r.db.QueryRowContext(ctx, subjectStatsSQL, string(t), subjectID).
		Scan(&st.AverageRating, &st.ReviewCount); err != nil {
		return domain.SubjectStats{}, err
	}
	return st, nil
}
