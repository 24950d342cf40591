package cache

import (
	"context"
	"time"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/domain"
)

// Generation identifies the owner's cache state a lookup was made in.
type Generation int64

// StatementCache keeps built statements per owner. Invalidate drops every entry of the
// owner at once and is called after each write that can change a statement. Set stores
// under the generation returned by the Get that missed, so a statement built from data
// read before an Invalidate is never served afterwards.
type StatementCache interface {
	Get(ctx context.Context, ownerID string, key string) (*domain.Statement, Generation, bool, error)
	Set(ctx context.Context, ownerID string, key string, gen Generation, value *domain.Statement, ttl time.Duration) error
	Invalidate(ctx context.Context, ownerID string) error
}

type NoopStatementCache struct{}

func (NoopStatementCache) Get(_ context.Context, _ string, _ string) (*domain.Statement, Generation, bool, error) {
	return nil, 0, false, nil
}

func (NoopStatementCache) Set(_ context.Context, _ string, _ string, _ Generation, _ *domain.Statement, _ time.Duration) error {
	return nil
}

func (NoopStatementCache) Invalidate(_ context.Context, _ string) error {
	return nil
}

// StatementKey is the cache key of a statement request.
func StatementKey(from string, to string, customerID string) string {
	if customerID == "" {
		customerID = "*"
	}
	return from + ":" + to + ":" + customerID
}
