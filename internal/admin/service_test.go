package admin

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/pkg/logger"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event messaging.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type mockReloader struct {
	mock.Mock
}

func (m *mockReloader) Reload(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, r)
	return args.String(0), args.Error(1)
}

type fixture struct {
	service   *Service
	store     *store.MemoryStore
	publisher *mockPublisher
	reloader  *mockReloader
	uploader  *mockUploader
}

func newFixture() *fixture {
	f := &fixture{
		store:     store.NewMemoryStore(),
		publisher: new(mockPublisher),
		reloader:  new(mockReloader),
		uploader:  new(mockUploader),
	}
	f.service = NewService(f.store, f.uploader, f.reloader, f.publisher, logger.Discard())
	return f
}

func (f *fixture) expectChange(action string) {
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.ProductsChangedEvent) bool {
		return e.Action == action
	})).Return(nil).Once()
	f.reloader.On("Reload", mock.Anything).Return(nil).Once()
}

func validInput() ProductInput {
	return ProductInput{
		Name:        "Desk Lamp",
		Description: "Warm light",
		Price:       decimal.RequireFromString("24.999"),
		Category:    "home",
		ImageURL:    "https://img.example.com/lamp.jpg",
	}
}

func TestService_Create(t *testing.T) {
	// given
	f := newFixture()
	f.expectChange(events.ActionCreated)

	// when
	created, err := f.service.Create(context.Background(), validInput())

	// then
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "25", created.Price.String(), "price rounded to cents")
	assert.False(t, created.UpdatedAt.IsZero())
	f.publisher.AssertExpectations(t)
	f.reloader.AssertExpectations(t)
}

func TestService_Create_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(in *ProductInput)
		expectedErr error
	}{
		{name: "missing name", mutate: func(in *ProductInput) { in.Name = "  " }, expectedErr: perrors.ErrInvalidProduct},
		{name: "missing description", mutate: func(in *ProductInput) { in.Description = "" }, expectedErr: perrors.ErrInvalidProduct},
		{name: "missing category", mutate: func(in *ProductInput) { in.Category = "" }, expectedErr: perrors.ErrInvalidProduct},
		{name: "zero price", mutate: func(in *ProductInput) { in.Price = decimal.Zero }, expectedErr: perrors.ErrInvalidProduct},
		{name: "negative price", mutate: func(in *ProductInput) { in.Price = decimal.NewFromInt(-3) }, expectedErr: perrors.ErrInvalidProduct},
		{name: "missing image", mutate: func(in *ProductInput) { in.ImageURL = "" }, expectedErr: perrors.ErrImageRequired},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := newFixture()
			in := validInput()
			tc.mutate(&in)

			// when
			_, err := f.service.Create(context.Background(), in)

			// then
			require.ErrorIs(t, err, tc.expectedErr)
			list, _ := f.store.ListAll(context.Background())
			assert.Empty(t, list)
			f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Update_KeepsImageWhenNoneGiven(t *testing.T) {
	// given
	f := newFixture()
	f.expectChange(events.ActionCreated)
	created, err := f.service.Create(context.Background(), validInput())
	require.NoError(t, err)
	f.expectChange(events.ActionUpdated)
	in := validInput()
	in.Name = "Floor Lamp"
	in.ImageURL = ""
	in.Featured = true

	// when
	updated, err := f.service.Update(context.Background(), created.ID, in)

	// then
	require.NoError(t, err)
	assert.Equal(t, "Floor Lamp", updated.Name)
	assert.True(t, updated.Featured)
	assert.Equal(t, created.ImageURL, updated.ImageURL)
	f.publisher.AssertExpectations(t)
}

func TestService_Update_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.service.Update(context.Background(), "missing", validInput())

	require.ErrorIs(t, err, perrors.ErrProductNotFound)
}

func TestService_Delete(t *testing.T) {
	f := newFixture()
	f.expectChange(events.ActionCreated)
	created, err := f.service.Create(context.Background(), validInput())
	require.NoError(t, err)
	f.expectChange(events.ActionDeleted)

	require.NoError(t, f.service.Delete(context.Background(), created.ID))
	require.ErrorIs(t, f.service.Delete(context.Background(), created.ID), perrors.ErrProductNotFound)
	f.reloader.AssertExpectations(t)
}

func TestService_Seed(t *testing.T) {
	f := newFixture()
	f.expectChange(events.ActionSeeded)

	created, err := f.service.Seed(context.Background())

	require.NoError(t, err)
	assert.Len(t, created, 8)
	featured, err := f.store.ListFeatured(context.Background())
	require.NoError(t, err)
	assert.Len(t, featured, 4)
	f.reloader.AssertNumberOfCalls(t, "Reload", 1)
}

func TestService_ChangeNotificationFailuresAreNotFatal(t *testing.T) {
	f := newFixture()
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))
	f.reloader.On("Reload", mock.Anything).Return(errors.New("db down"))

	created, err := f.service.Create(context.Background(), validInput())

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}

func TestService_UploadImage(t *testing.T) {
	f := newFixture()
	body := strings.NewReader("bytes")
	f.uploader.On("Upload", mock.Anything, "lamp.png", body).Return("", perrors.ErrUploadFailed)

	_, err := f.service.UploadImage(context.Background(), "lamp.png", body)

	require.ErrorIs(t, err, perrors.ErrUploadFailed)
	f.uploader.AssertExpectations(t)
}
