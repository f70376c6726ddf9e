package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertSymmetric checks symbol ∈ forward[bucket] ⟺ bucket ∈ reverse[symbol]
func assertSymmetric(t *testing.T, repo domain.BucketRepository) {
	t.Helper()
	r := repo.(*bucketRepository)
	r.mu.RLock()
	defer r.mu.RUnlock()

	for bucket, symbols := range r.forward {
		for symbol := range symbols {
			_, ok := r.reverse[symbol][bucket]
			assert.Truef(t, ok, "%s in bucket %s but reverse entry missing", symbol, bucket)
		}
	}
	for symbol, buckets := range r.reverse {
		for bucket := range buckets {
			_, ok := r.forward[bucket][symbol]
			assert.Truef(t, ok, "bucket %s listed for %s but forward entry missing", bucket, symbol)
		}
	}
}

func TestBucketRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := NewBucketRepository()

	require.NoError(t, repo.Create(ctx, "BucketA"))
	err := repo.Create(ctx, "BucketA")
	assert.ErrorIs(t, err, domain.ErrBucketAlreadyExists)

	symbols, err := repo.SymbolsIn(ctx, "BucketA")
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestBucketRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewBucketRepository()

	err := repo.Delete(ctx, "Missing")
	assert.ErrorIs(t, err, domain.ErrBucketNotFound)

	repo.AddMembership(ctx, "NVDA", []string{"BucketA", "BucketB"})
	repo.AddMembership(ctx, "AMZN", []string{"BucketA"})

	require.NoError(t, repo.Delete(ctx, "BucketA"))
	assertSymmetric(t, repo)

	assert.Equal(t, []string{"BucketB"}, repo.BucketsFor(ctx, "NVDA"))
	assert.Empty(t, repo.BucketsFor(ctx, "AMZN"))
	_, err = repo.SymbolsIn(ctx, "BucketA")
	assert.ErrorIs(t, err, domain.ErrBucketNotFound)
}

func TestBucketRepository_AddMembershipAutoCreatesBuckets(t *testing.T) {
	ctx := context.Background()
	repo := NewBucketRepository()

	repo.AddMembership(ctx, "TSLA", []string{"BucketB", "BucketA"})
	assertSymmetric(t, repo)

	assert.Equal(t, []string{"BucketA", "BucketB"}, repo.BucketsFor(ctx, "TSLA"))
	symbols, err := repo.SymbolsIn(ctx, "BucketB")
	require.NoError(t, err)
	assert.Equal(t, []string{"TSLA"}, symbols)
}

func TestBucketRepository_RemoveMembership(t *testing.T) {
	ctx := context.Background()
	repo := NewBucketRepository()
	repo.AddMembership(ctx, "TSLA", []string{"BucketA", "BucketB"})

	tests := []struct {
		name   string
		bucket string
		symbol string
	}{
		{name: "Unknown bucket is a no-op", bucket: "BucketZ", symbol: "TSLA"},
		{name: "Unknown symbol is a no-op", bucket: "BucketA", symbol: "GS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo.RemoveMembership(ctx, tt.bucket, tt.symbol)
			assertSymmetric(t, repo)
			assert.Equal(t, []string{"BucketA", "BucketB"}, repo.BucketsFor(ctx, "TSLA"))
		})
	}

	repo.RemoveMembership(ctx, "BucketB", "TSLA")
	assertSymmetric(t, repo)
	assert.Equal(t, []string{"BucketA"}, repo.BucketsFor(ctx, "TSLA"))

	// the bucket survives losing its last member
	symbols, err := repo.SymbolsIn(ctx, "BucketB")
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestBucketRepository_RemoveAllMemberships(t *testing.T) {
	ctx := context.Background()
	repo := NewBucketRepository()
	repo.AddMembership(ctx, "GS", []string{"BucketA", "BucketZ"})
	repo.AddMembership(ctx, "AMZN", []string{"BucketA"})

	repo.RemoveAllMemberships(ctx, "GS")
	assertSymmetric(t, repo)

	assert.Empty(t, repo.BucketsFor(ctx, "GS"))
	assert.Equal(t, map[string][]string{
		"BucketA": {"AMZN"},
		"BucketZ": {},
	}, repo.List(ctx))
}

func TestBucketRepository_ListIsSortedRegardlessOfInsertionOrder(t *testing.T) {
	ctx := context.Background()
	first := NewBucketRepository()
	second := NewBucketRepository()

	first.AddMembership(ctx, "TSLA", []string{"BucketB", "BucketA"})
	first.AddMembership(ctx, "AMZN", []string{"BucketA"})
	first.AddMembership(ctx, "NVDA", []string{"BucketB"})

	second.AddMembership(ctx, "NVDA", []string{"BucketB"})
	second.AddMembership(ctx, "AMZN", []string{"BucketA"})
	second.AddMembership(ctx, "TSLA", []string{"BucketA", "BucketB"})

	want := map[string][]string{
		"BucketA": {"AMZN", "TSLA"},
		"BucketB": {"NVDA", "TSLA"},
	}
	assert.Equal(t, want, first.List(ctx))
	assert.Equal(t, want, second.List(ctx))
}

func TestBucketRepository_SymmetryUnderRandomOperations(t *testing.T) {
	ctx := context.Background()
	repo := NewBucketRepository()
	rng := rand.New(rand.NewSource(42))

	buckets := []string{"BucketA", "BucketB", "BucketC", "BucketZ"}
	symbols := []string{"AMZN", "GS", "NVDA", "TSLA"}
	pick := func(xs []string) string { return xs[rng.Intn(len(xs))] }

	for i := 0; i < 500; i++ {
		switch rng.Intn(5) {
		case 0:
			_ = repo.Create(ctx, pick(buckets))
		case 1:
			_ = repo.Delete(ctx, pick(buckets))
		case 2:
			repo.AddMembership(ctx, pick(symbols), []string{pick(buckets), pick(buckets)})
		case 3:
			repo.RemoveMembership(ctx, pick(buckets), pick(symbols))
		case 4:
			repo.RemoveAllMemberships(ctx, pick(symbols))
		}
		assertSymmetric(t, repo)
	}
}

func TestBucketRepository_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	repo := NewBucketRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			symbol := fmt.Sprintf("SYM%d", i%5)
			bucket := fmt.Sprintf("Bucket%d", i%3)
			repo.AddMembership(ctx, symbol, []string{bucket})
			_ = repo.List(ctx)
			if i%4 == 0 {
				repo.RemoveMembership(ctx, bucket, symbol)
			}
			_ = repo.BucketsFor(ctx, symbol)
		}(i)
	}
	wg.Wait()

	assertSymmetric(t, repo)
}
