package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Keerthudarshu/petandco/internal/catalog"
	"github.com/Keerthudarshu/petandco/internal/commerceapi"
	mock "github.com/Keerthudarshu/petandco/internal/mock/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func rawProducts() []commerceapi.Product {
	return []commerceapi.Product{
		{ID: "1", Name: "Kibble", Category: "2", Bestseller: true},
		{ID: "2", Name: "Catnip", Category: "cat-toys", ImageURL: "img/catnip.png"},
	}
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock.NewMockSource(ctrl)
	ctx := context.Background()

	src.EXPECT().ListProducts(gomock.Any()).Return(rawProducts(), nil)
	src.EXPECT().ListCategories(gomock.Any()).Return([]commerceapi.Category{{ID: "2", Name: "Dog Food"}}, nil)

	svc := catalog.NewService(src, "https://api.test")
	res, err := svc.List(ctx, catalog.Query{Category: "cat-toys"})

	require.NoError(t, err)
	assert.Equal(t, "Cat Toys", res.Title)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "https://api.test/img/catnip.png", res.Products[0].Image)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, []catalog.Facet{
		{ID: "cat-toys", Label: "Cat Toys", Count: 1},
		{ID: "2", Label: "Dog Food", Count: 1},
	}, res.Facets)
}

func TestService_Cache(t *testing.T) {
	ctx := context.Background()

	t.Run("Fresh copy is reused", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		src := mock.NewMockSource(ctrl)
		clk := &clock{now: time.Unix(1000, 0)}

		src.EXPECT().ListProducts(gomock.Any()).Return(rawProducts(), nil).Times(1)
		src.EXPECT().ListCategories(gomock.Any()).Return(nil, nil).Times(1)

		svc := catalog.NewService(src, "", catalog.WithCacheTTL(time.Minute), catalog.WithClock(clk.Now))
		_, err := svc.List(ctx, catalog.Query{})
		require.NoError(t, err)

		clk.now = clk.now.Add(30 * time.Second)
		_, err = svc.Categories(ctx)
		require.NoError(t, err)
	})

	t.Run("Stale copy served when refresh fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		src := mock.NewMockSource(ctrl)
		clk := &clock{now: time.Unix(1000, 0)}

		gomock.InOrder(
			src.EXPECT().ListProducts(gomock.Any()).Return(rawProducts(), nil),
			src.EXPECT().ListProducts(gomock.Any()).Return(nil, errors.New("connection refused")),
		)
		src.EXPECT().ListCategories(gomock.Any()).Return(nil, nil)

		svc := catalog.NewService(src, "", catalog.WithCacheTTL(time.Minute), catalog.WithClock(clk.Now))
		_, err := svc.List(ctx, catalog.Query{})
		require.NoError(t, err)

		clk.now = clk.now.Add(2 * time.Minute)
		res, err := svc.List(ctx, catalog.Query{})
		require.NoError(t, err)
		assert.Len(t, res.Products, 2)
	})

	t.Run("No copy and failing source", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		src := mock.NewMockSource(ctrl)

		src.EXPECT().ListProducts(gomock.Any()).Return(nil, errors.New("connection refused"))

		svc := catalog.NewService(src, "")
		_, err := svc.List(ctx, catalog.Query{})
		assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
	})
}

func TestService_ConcurrentColdLoadFetchesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock.NewMockSource(ctrl)
	clk := &clock{now: time.Unix(1000, 0)}
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	src.EXPECT().ListProducts(gomock.Any()).DoAndReturn(func(context.Context) ([]commerceapi.Product, error) {
		close(entered)
		<-release
		return rawProducts(), nil
	}).Times(1)
	src.EXPECT().ListCategories(gomock.Any()).Return(nil, nil).Times(1)

	svc := catalog.NewService(src, "", catalog.WithCacheTTL(time.Minute), catalog.WithClock(clk.Now))

	var wg sync.WaitGroup
	totals := make([]int, 8)
	for i := range totals {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.List(ctx, catalog.Query{})
			assert.NoError(t, err)
			totals[i] = res.Total
		}(i)
	}

	<-entered
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, n := range totals {
		assert.Equal(t, 2, n)
	}
}

func TestService_CanceledCallerLeavesSharedFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock.NewMockSource(ctrl)
	clk := &clock{now: time.Unix(1000, 0)}

	release := make(chan struct{})
	src.EXPECT().ListProducts(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]commerceapi.Product, error) {
		<-release
		return rawProducts(), ctx.Err()
	}).Times(1)
	src.EXPECT().ListCategories(gomock.Any()).Return(nil, nil).Times(1)

	svc := catalog.NewService(src, "", catalog.WithCacheTTL(time.Minute), catalog.WithClock(clk.Now))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.List(ctx, catalog.Query{})
	assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)

	close(release)
	require.Eventually(t, func() bool {
		res, err := svc.List(context.Background(), catalog.Query{})
		return err == nil && res.Total == 2
	}, time.Second, 5*time.Millisecond)
}

func TestService_CategoriesFailureDegradesLabels(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock.NewMockSource(ctrl)

	src.EXPECT().ListProducts(gomock.Any()).Return(rawProducts(), nil)
	src.EXPECT().ListCategories(gomock.Any()).Return(nil, errors.New("timeout"))

	svc := catalog.NewService(src, "")
	facets, err := svc.Categories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Category 2", facets[1].Label)
}

func TestService_Product(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mock.NewMockSource(ctrl)

	src.EXPECT().ListProducts(gomock.Any()).Return(rawProducts(), nil)
	src.EXPECT().ListCategories(gomock.Any()).Return(nil, nil)

	svc := catalog.NewService(src, "")
	p, err := svc.Product(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Kibble", p.Name)

	_, err = svc.Product(context.Background(), "404")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}
