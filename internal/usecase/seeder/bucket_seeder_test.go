package seeder

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/simaogato/portfolio-backend/internal/domain"
)

// MockBucketRepository is a mock implementation of BucketRepository
type MockBucketRepository struct {
	mock.Mock
}

func (m *MockBucketRepository) Create(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockBucketRepository) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockBucketRepository) List(ctx context.Context) map[string][]string {
	args := m.Called(ctx)
	return args.Get(0).(map[string][]string)
}

func (m *MockBucketRepository) AddMembership(ctx context.Context, symbol string, buckets []string) {
	m.Called(ctx, symbol, buckets)
}

func (m *MockBucketRepository) RemoveMembership(ctx context.Context, bucket, symbol string) {
	m.Called(ctx, bucket, symbol)
}

func (m *MockBucketRepository) RemoveAllMemberships(ctx context.Context, symbol string) {
	m.Called(ctx, symbol)
}

func (m *MockBucketRepository) SymbolsIn(ctx context.Context, bucket string) ([]string, error) {
	args := m.Called(ctx, bucket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBucketRepository) BucketsFor(ctx context.Context, symbol string) []string {
	args := m.Called(ctx, symbol)
	return args.Get(0).([]string)
}

func TestBucketSeeder_Seed_BucketsMissing(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockBucketRepository)
	seeder := NewBucketSeeder(mockRepo, []string{"Tech", " ", "Income", "Tech"})

	mockRepo.On("Create", ctx, "Income").Return(nil)
	mockRepo.On("Create", ctx, "Tech").Return(nil)

	// Execute
	err := seeder.Seed(ctx)

	// Assert
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	// Verify Create was called once per distinct name
	mockRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestBucketSeeder_Seed_BucketsExist(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockBucketRepository)
	seeder := NewBucketSeeder(mockRepo, []string{"Tech", "Income"})

	mockRepo.On("Create", ctx, "Income").Return(fmt.Errorf("%w: Income", domain.ErrBucketAlreadyExists))
	mockRepo.On("Create", ctx, "Tech").Return(nil)

	err := seeder.Seed(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestBucketSeeder_Seed_RepositoryError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockBucketRepository)
	seeder := NewBucketSeeder(mockRepo, []string{"A", "B"})

	mockRepo.On("Create", ctx, "A").Return(errors.New("database connection failed"))

	err := seeder.Seed(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database connection failed")
	mockRepo.AssertNotCalled(t, "Create", ctx, "B")
}

func TestBucketSeeder_Seed_NothingConfigured(t *testing.T) {
	mockRepo := new(MockBucketRepository)

	err := NewBucketSeeder(mockRepo, nil).Seed(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "Create")
}
