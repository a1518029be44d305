package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lookbook-service/internal/clients"
	"lookbook-service/internal/models"
)

type mockProductSource struct {
	mock.Mock
}

func (m *mockProductSource) List(ctx context.Context, opts clients.ListProductsOptions) ([]models.Product, *models.PaginationInfo, error) {
	args := m.Called(ctx, opts)
	products, _ := args.Get(0).([]models.Product)
	pagination, _ := args.Get(1).(*models.PaginationInfo)
	return products, pagination, args.Error(2)
}

type mockPostSource struct {
	mock.Mock
}

func (m *mockPostSource) ListByUsername(ctx context.Context, username string) ([]models.Ootd, error) {
	args := m.Called(ctx, username)
	looks, _ := args.Get(0).([]models.Ootd)
	return looks, args.Error(1)
}

func (m *mockPostSource) GetByID(ctx context.Context, id string) (*models.Ootd, error) {
	args := m.Called(ctx, id)
	look, _ := args.Get(0).(*models.Ootd)
	return look, args.Error(1)
}

type mockProfileSource struct {
	mock.Mock
}

func (m *mockProfileSource) GetInfluencerByHandle(ctx context.Context, handle string) (*models.Influencer, error) {
	args := m.Called(ctx, handle)
	influencer, _ := args.Get(0).(*models.Influencer)
	return influencer, args.Error(1)
}

func TestCatalogNormalizesBackendProducts(t *testing.T) {
	products := new(mockProductSource)
	products.On("List", mock.Anything, clients.ListProductsOptions{Username: "sarah", PageSize: 100}).
		Return([]models.Product{
			{ID: "p1", Name: "Jaket", Price: "250000", Category: "Fashion"},
			{ID: "p2", Name: "Tas", Price: ""},
		}, nil, nil).Once()

	repo := NewStorefrontRepository(products, new(mockPostSource), new(mockProfileSource), nil, 100)

	entries, err := repo.Catalog(context.Background(), "sarah")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 250000.0, entries[0].Price)
	assert.True(t, entries[0].HasPrice)
	assert.False(t, entries[1].HasPrice)
	assert.Equal(t, "Others", entries[1].Category)
	products.AssertExpectations(t)
}

func TestProfilePassesThroughWithoutCache(t *testing.T) {
	profiles := new(mockProfileSource)
	profiles.On("GetInfluencerByHandle", mock.Anything, "sarah").
		Return(&models.Influencer{ID: "i1", Handle: "sarah"}, nil).Twice()

	repo := NewStorefrontRepository(new(mockProductSource), new(mockPostSource), profiles, nil, 100)

	for i := 0; i < 2; i++ {
		influencer, err := repo.Profile(context.Background(), "sarah")
		require.NoError(t, err)
		assert.Equal(t, "sarah", influencer.Handle)
	}
	profiles.AssertExpectations(t)
}

func TestLooksPropagatesBackendError(t *testing.T) {
	posts := new(mockPostSource)
	posts.On("ListByUsername", mock.Anything, "sarah").
		Return(nil, assert.AnError).Once()

	repo := NewStorefrontRepository(new(mockProductSource), posts, new(mockProfileSource), nil, 100)

	_, err := repo.Looks(context.Background(), "sarah")
	assert.Error(t, err)
}

func TestInvalidateHandleWithoutRedisIsNoop(t *testing.T) {
	repo := NewStorefrontRepository(new(mockProductSource), new(mockPostSource), new(mockProfileSource), nil, 100)
	repo.InvalidateHandle(context.Background(), "sarah")
}
