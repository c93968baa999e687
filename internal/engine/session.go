package engine

import "context"

// Session bundles the two caches the engine owns for one logical user
// session: the catalog index and the packaging cache. Both live until
// Refresh rebuilds them from a new catalog snapshot; nothing else in the
// engine is stateful.
type Session struct {
	catalog   *Index
	packaging *PackagingResolver
	bottles   BottleSource
}

// NewSession builds a session over a catalog snapshot and a bottle source.
func NewSession(entries []CatalogEntry, bottles BottleSource) *Session {
	return &Session{
		catalog:   NewIndex(entries),
		packaging: NewPackagingResolver(bottles),
		bottles:   bottles,
	}
}

// Catalog exposes the session's ingredient index.
func (s *Session) Catalog() *Index {
	return s.catalog
}

// Packaging exposes the session's bottle resolver.
func (s *Session) Packaging() *PackagingResolver {
	return s.packaging
}

// Refresh discards both caches and rebuilds the index from a fresh catalog
// snapshot. Callers do this after a full catalog reload; there is no finer
// grained invalidation protocol.
func (s *Session) Refresh(entries []CatalogEntry) {
	s.catalog = NewIndex(entries)
	s.packaging.Invalidate()
}

// EnsureIngredient resolves or creates an ingredient through the session's
// index.
func (s *Session) EnsureIngredient(ctx context.Context, creator IngredientCreator, name string) (CatalogEntry, error) {
	id, err := s.catalog.Ensure(ctx, creator, name)
	if err != nil {
		return CatalogEntry{}, err
	}
	if entry := s.catalog.Lookup(id); entry != nil {
		return *entry, nil
	}
	return CatalogEntry{ID: id, Name: name}, nil
}
