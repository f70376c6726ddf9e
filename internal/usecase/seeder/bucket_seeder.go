package seeder

import (
	"context"
	"errors"

	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/logger"
)

// BucketSeeder handles seeding of configured buckets
type BucketSeeder struct {
	repo    domain.BucketRepository
	buckets []string
}

// NewBucketSeeder creates a new BucketSeeder instance.
// Names are normalized: blanks dropped, duplicates collapsed.
func NewBucketSeeder(repo domain.BucketRepository, buckets []string) *BucketSeeder {
	return &BucketSeeder{
		repo:    repo,
		buckets: domain.NormalizeBucketSet(buckets),
	}
}

// Seed ensures every configured bucket exists.
// A bucket that already exists is left untouched, so Seed can run on every start.
func (s *BucketSeeder) Seed(ctx context.Context) error {
	created := 0
	for _, name := range s.buckets {
		err := s.repo.Create(ctx, name)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrBucketAlreadyExists):
			// If bucket exists, no action needed
		default:
			return err
		}
	}

	if created > 0 {
		logger.Infof("seeder: created %d of %d configured buckets", created, len(s.buckets))
	}
	return nil
}
