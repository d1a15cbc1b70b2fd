package semantic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachingComparator memoizes verdicts from an inner comparator. The same
// pair of values recurs constantly across presentations under the same
// credit, and AI verdicts are the expensive ones to recompute.
type CachingComparator struct {
	inner Comparator
	cache *gocache.Cache
}

// NewCachingComparator wraps a comparator with a TTL verdict cache.
func NewCachingComparator(inner Comparator, ttl time.Duration) *CachingComparator {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachingComparator{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Compare returns a cached verdict when one exists, marking it as
// cache-sourced; otherwise it delegates and stores the result. Fuzzy
// verdicts are cached too: they are cheap, but a stable source label in
// reports beats recomputation noise.
func (c *CachingComparator) Compare(ctx context.Context, left, right string, opts CompareOptions) (*Verdict, error) {
	key := cacheKey(left, right, opts)

	if cached, found := c.cache.Get(key); found {
		verdict := cached.(Verdict)
		verdict.Source = SourceCache
		verdict.Documents = opts.Documents
		return &verdict, nil
	}

	verdict, err := c.inner.Compare(ctx, left, right, opts)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, *verdict)
	return verdict, nil
}

// cacheKey hashes the comparison inputs. The threshold is part of the
// key so a tightened threshold never reuses a laxer verdict.
func cacheKey(left, right string, opts CompareOptions) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%.4f\x00%s",
		Normalize(left), Normalize(right), opts.Threshold, opts.Hint)))
	return hex.EncodeToString(sum[:])
}
