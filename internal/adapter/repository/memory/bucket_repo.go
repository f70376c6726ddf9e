package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/simaogato/portfolio-backend/internal/domain"
)

type set map[string]struct{}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// bucketRepository implements domain.BucketRepository.
// forward (bucket -> symbols) and reverse (symbol -> buckets) are mirror images,
// both guarded by mu so no reader observes one side without the other.
type bucketRepository struct {
	mu      sync.RWMutex
	forward map[string]set
	reverse map[string]set
}

// NewBucketRepository creates a new in-memory bucket index
func NewBucketRepository() domain.BucketRepository {
	return &bucketRepository{
		forward: make(map[string]set),
		reverse: make(map[string]set),
	}
}

// Create registers an empty bucket
func (r *bucketRepository) Create(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.forward[name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrBucketAlreadyExists, name)
	}
	r.forward[name] = make(set)
	return nil
}

// Delete removes a bucket and every membership that points at it
func (r *bucketRepository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	symbols, ok := r.forward[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrBucketNotFound, name)
	}
	for symbol := range symbols {
		r.unlinkReverse(symbol, name)
	}
	delete(r.forward, name)
	return nil
}

// List returns a snapshot of every bucket and its sorted members
func (r *bucketRepository) List(ctx context.Context) map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string, len(r.forward))
	for name, symbols := range r.forward {
		out[name] = symbols.sorted()
	}
	return out
}

// AddMembership auto-creates missing buckets
func (r *bucketRepository) AddMembership(ctx context.Context, symbol string, buckets []string) {
	if len(buckets) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rev, ok := r.reverse[symbol]
	if !ok {
		rev = make(set)
		r.reverse[symbol] = rev
	}
	for _, b := range buckets {
		fwd, ok := r.forward[b]
		if !ok {
			fwd = make(set)
			r.forward[b] = fwd
		}
		fwd[symbol] = struct{}{}
		rev[b] = struct{}{}
	}
}

// RemoveMembership unpairs bucket and symbol
func (r *bucketRepository) RemoveMembership(ctx context.Context, bucket, symbol string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fwd, ok := r.forward[bucket]
	if !ok {
		return
	}
	if _, ok := fwd[symbol]; !ok {
		return
	}
	delete(fwd, symbol)
	r.unlinkReverse(symbol, bucket)
}

// RemoveAllMemberships purges symbol from every bucket
func (r *bucketRepository) RemoveAllMemberships(ctx context.Context, symbol string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for bucket := range r.reverse[symbol] {
		if fwd, ok := r.forward[bucket]; ok {
			delete(fwd, symbol)
		}
	}
	delete(r.reverse, symbol)
}

// SymbolsIn returns the sorted members of a bucket
func (r *bucketRepository) SymbolsIn(ctx context.Context, bucket string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fwd, ok := r.forward[bucket]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBucketNotFound, bucket)
	}
	return fwd.sorted(), nil
}

// BucketsFor returns the sorted buckets holding symbol
func (r *bucketRepository) BucketsFor(ctx context.Context, symbol string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.reverse[symbol].sorted()
}

// unlinkReverse drops bucket from symbol's reverse set. Callers hold mu.
func (r *bucketRepository) unlinkReverse(symbol, bucket string) {
	rev, ok := r.reverse[symbol]
	if !ok {
		return
	}
	delete(rev, bucket)
	if len(rev) == 0 {
		delete(r.reverse, symbol)
	}
}
