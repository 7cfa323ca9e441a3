package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"festival_reviews/internal/adapters/observability"
	"festival_reviews/internal/domain"
)

type CommandService struct {
	repo     domain.ReviewRepository
	subjects domain.SubjectChecker
	cache    domain.Cache
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewCommandService wires the write side. subjects and cache may be nil:
// without a checker every subject is accepted, without a cache nothing is
// invalidated.
func NewCommandService(r domain.ReviewRepository, sc domain.SubjectChecker, c domain.Cache, log zerolog.Logger) *CommandService {
	return &CommandService{
		repo:     r,
		subjects: sc,
		cache:    c,
		log:      log.With().Str("service", "review").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (s *CommandService) CreateReview(ctx context.Context, in domain.ReviewInput) (domain.Review, error) {
	rv, err := s.create(ctx, in)
	observability.ObserveMutation("create", err)
	return rv, err
}

func (s *CommandService) create(ctx context.Context, in domain.ReviewInput) (domain.Review, error) {
	in = normalizeInput(in)
	if err := validateInput(in); err != nil {
		s.log.Warn().Err(err).Msg("create review validation failed")
		return domain.Review{}, err
	}
	if err := s.checkSubject(ctx, in.SubjectID, in.SubjectType); err != nil {
		return domain.Review{}, err
	}

	now := s.now()
	rv := domain.Review{
		ID:           s.newID(),
		SubjectID:    in.SubjectID,
		SubjectType:  in.SubjectType,
		ReviewerName: in.ReviewerName,
		Rating:       in.Rating,
		Comment:      in.Comment,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateReview(ctx, rv); err != nil {
		s.log.Error().Err(err).Str("subject_id", rv.SubjectID).Msg("create review failed")
		return domain.Review{}, fmt.Errorf("create review: %w", err)
	}
	s.invalidate(ctx, rv.SubjectType, rv.SubjectID)

	s.log.Info().
		Str("review_id", rv.ID).
		Str("subject_id", rv.SubjectID).
		Str("subject_type", string(rv.SubjectType)).
		Int("rating", rv.Rating).
		Msg("review created")
	return rv, nil
}

func (s *CommandService) UpdateReview(ctx context.Context, id string, in domain.ReviewInput) (domain.Review, error) {
	rv, err := s.update(ctx, id, in)
	observability.ObserveMutation("update", err)
	return rv, err
}

func (s *CommandService) update(ctx context.Context, id string, in domain.ReviewInput) (domain.Review, error) {
	in = normalizeInput(in)
	if err := validateInput(in); err != nil {
		s.log.Warn().Err(err).Str("review_id", id).Msg("update review validation failed")
		return domain.Review{}, err
	}

	existing, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return domain.Review{}, fmt.Errorf("review %s: %w", id, err)
	}

	// only re-check the subject when the review moves to another one
	if existing.SubjectID != in.SubjectID || existing.SubjectType != in.SubjectType {
		if err := s.checkSubject(ctx, in.SubjectID, in.SubjectType); err != nil {
			return domain.Review{}, err
		}
	}

	updated := existing
	updated.SubjectID = in.SubjectID
	updated.SubjectType = in.SubjectType
	updated.ReviewerName = in.ReviewerName
	updated.Rating = in.Rating
	updated.Comment = in.Comment
	updated.UpdatedAt = s.now()

	if err := s.repo.UpdateReview(ctx, updated); err != nil {
		s.log.Error().Err(err).Str("review_id", id).Msg("update review failed")
		return domain.Review{}, fmt.Errorf("update review: %w", err)
	}
	s.invalidate(ctx, existing.SubjectType, existing.SubjectID)
	if existing.SubjectID != updated.SubjectID || existing.SubjectType != updated.SubjectType {
		s.invalidate(ctx, updated.SubjectType, updated.SubjectID)
	}

	s.log.Info().Str("review_id", id).Int("rating", updated.Rating).Msg("review updated")
	return updated, nil
}

func (s *CommandService) DeleteReview(ctx context.Context, id string) error {
	err := s.delete(ctx, id)
	observability.ObserveMutation("delete", err)
	return err
}

func (s *CommandService) delete(ctx context.Context, id string) error {
	existing, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return fmt.Errorf("review %s: %w", id, err)
	}
	if err := s.repo.DeleteReview(ctx, id); err != nil {
		s.log.Error().Err(err).Str("review_id", id).Msg("delete review failed")
		return fmt.Errorf("delete review: %w", err)
	}
	s.invalidate(ctx, existing.SubjectType, existing.SubjectID)

	s.log.Info().Str("review_id", id).Str("subject_id", existing.SubjectID).Msg("review deleted")
	return nil
}

// checkSubject rejects reviews for subjects the festival does not know.
// A failing lookup counts as "does not exist".
func (s *CommandService) checkSubject(ctx context.Context, subjectID string, t domain.SubjectType) error {
	if s.subjects == nil {
		return nil
	}
	ok, err := s.subjects.SubjectExists(ctx, subjectID, t)
	if err != nil {
		s.log.Warn().Err(err).Str("subject_id", subjectID).Msg("subject lookup failed")
	}
	if err != nil || !ok {
		return fmt.Errorf("%w: %s %s", domain.ErrSubjectNotFound, t, subjectID)
	}
	return nil
}

func (s *CommandService) invalidate(ctx context.Context, t domain.SubjectType, subjectID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, allReviewsKey, statsKey(t, subjectID)); err != nil {
		s.log.Warn().Err(err).Msg("cache invalidation failed")
	}
}
