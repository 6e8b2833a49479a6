package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/Keerthudarshu/petandco/internal/commerceapi"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

//go:generate mockgen -source=catalog_service.go -destination=../mock/catalog/catalog_service_mock.go -package=mock

// Source is the remote product and category API.
type Source interface {
	ListProducts(ctx context.Context) ([]commerceapi.Product, error)
	ListCategories(ctx context.Context) ([]commerceapi.Category, error)
}

type ListResult struct {
	Title    string
	Products []Product
	Facets   []Facet
	Total    int
}

type Service interface {
	List(ctx context.Context, q Query) (ListResult, error)
	Categories(ctx context.Context) ([]Facet, error)
	Product(ctx context.Context, id string) (Product, error)
}

type catalogSnapshot struct {
	products []Product
	names    map[string]string
	fetched  time.Time
}

type service struct {
	src     Source
	baseURL string
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger

	mu    sync.Mutex
	cache *catalogSnapshot
	group singleflight.Group
}

type ServiceOption func(*service)

// WithCacheTTL keeps fetched catalogs for ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *service) { s.ttl = ttl }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) { s.now = now }
}

func WithServiceLogger(l *zap.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.logger = l.Named("catalog.service")
		}
	}
}

// NewService builds the catalog service. baseURL resolves relative image
// paths.
func NewService(src Source, baseURL string, opts ...ServiceOption) Service {
	s := &service{
		src:     src,
		baseURL: baseURL,
		ttl:     time.Minute,
		now:     time.Now,
		logger:  zap.L().Named("catalog.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) List(ctx context.Context, q Query) (ListResult, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return ListResult{}, err
	}

	products := Filter(snap.products, q)
	Sort(products, q.Sort)

	return ListResult{
		Title:    Title(q.Category),
		Products: products,
		Facets:   Facets(snap.products, snap.names),
		Total:    len(products),
	}, nil
}

func (s *service) Categories(ctx context.Context) ([]Facet, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return Facets(snap.products, snap.names), nil
}

func (s *service) Product(ctx context.Context, id string) (Product, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range snap.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// load returns the cached catalog while it is fresh. A failed refresh falls
// back to the stale copy when one exists.
func (s *service) load(ctx context.Context) (*catalogSnapshot, error) {
	s.mu.Lock()
	cached := s.cache
	s.mu.Unlock()

	if cached != nil && s.ttl > 0 && s.now().Sub(cached.fetched) < s.ttl {
		return cached, nil
	}

	fresh, err := s.refresh(ctx)
	if err != nil {
		if cached != nil {
			s.logger.Warn("catalog refresh failed, serving stale copy", zap.Error(err))
			return cached, nil
		}
		return nil, ErrCatalogUnavailable.Wrap(err)
	}
	return fresh, nil
}

// refresh shares one upstream fetch among concurrent callers. The fetch
// outlives any single caller's cancellation; each caller still returns
// when its own ctx ends.
func (s *service) refresh(ctx context.Context) (*catalogSnapshot, error) {
	ch := s.group.DoChan("catalog", func() (interface{}, error) {
		snap, err := s.fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache = snap
		s.mu.Unlock()
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*catalogSnapshot), nil
	}
}

func (s *service) fetch(ctx context.Context) (*catalogSnapshot, error) {
	raw, err := s.src.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	categories, err := s.src.ListCategories(ctx)
	if err != nil {
		// Labels degrade to "Category N"; the listing itself still works.
		s.logger.Warn("failed to load categories", zap.Error(err))
	}
	for _, c := range categories {
		if c.ID != "" {
			names[c.ID.String()] = c.Name
		}
	}

	products := make([]Product, 0, len(raw))
	for _, p := range raw {
		products = append(products, Normalize(p, s.baseURL))
	}
	return &catalogSnapshot{products: products, names: names, fetched: s.now()}, nil
}
