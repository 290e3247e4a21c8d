package blame

import (
	"context"
	"log"

	"github.com/massimiliano76/nuclide/editor"
)

// Store persists snapshots keyed by file path and revision.
type Store interface {
	Get(ctx context.Context, path, revision string) (Snapshot, bool, error)
	Put(ctx context.Context, path, revision string, snapshot Snapshot) error
}

// RevisionFunc reports the revision the working tree is based on. Cached
// snapshots are only valid within one revision.
type RevisionFunc func(ctx context.Context) (string, error)

type cachedProvider struct {
	inner    Provider
	store    Store
	revision RevisionFunc
	logger   *log.Logger
}

type cachedResolverProvider struct {
	cachedProvider
	resolver URLResolver
}

// NewCachedProvider wraps a provider with a snapshot store. Cache failures
// degrade to the inner provider and are only logged. The returned provider
// resolves URLs exactly when the inner provider does.
func NewCachedProvider(inner Provider, store Store, revision RevisionFunc, logger *log.Logger) Provider {
	if logger == nil {
		logger = log.Default()
	}
	base := cachedProvider{inner: inner, store: store, revision: revision, logger: logger}
	if resolver, ok := inner.(URLResolver); ok {
		return &cachedResolverProvider{cachedProvider: base, resolver: resolver}
	}
	return &base
}

func (p *cachedProvider) Attribute(ctx context.Context, ed editor.Host) (Snapshot, error) {
	rev := ""
	if p.revision != nil {
		r, err := p.revision(ctx)
		if err != nil {
			p.logger.Printf("blame cache: revision lookup failed: %v", err)
		} else {
			rev = r
		}
	}
	path := ed.Path()
	if rev != "" && p.store != nil {
		if snap, ok, err := p.store.Get(ctx, path, rev); err != nil {
			p.logger.Printf("blame cache: get %s@%s: %v", path, rev, err)
		} else if ok {
			return snap, nil
		}
	}
	snap, err := p.inner.Attribute(ctx, ed)
	if err != nil {
		return nil, err
	}
	if rev != "" && p.store != nil && len(snap) > 0 {
		if err := p.store.Put(ctx, path, rev, snap); err != nil {
			p.logger.Printf("blame cache: put %s@%s: %v", path, rev, err)
		}
	}
	return snap, nil
}

func (p *cachedResolverProvider) ResolveURL(ctx context.Context, path, changeset string) (string, error) {
	return p.resolver.ResolveURL(ctx, path, changeset)
}
