package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/admin"
	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/product"
	"github.com/abgdnv/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	adminMarker = "shop.admin"
	adminToken  = "admin-token"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, tokenString string) (jwt.Token, error) {
	args := m.Called(ctx, tokenString)
	var token jwt.Token
	if args.Get(0) != nil {
		token = args.Get(0).(jwt.Token)
	}
	return token, args.Error(1)
}

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) List(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	var list []product.Product
	if args.Get(0) != nil {
		list = args.Get(0).([]product.Product)
	}
	return list, args.Error(1)
}

func (m *mockProductService) Create(ctx context.Context, in admin.ProductInput) (*product.Product, error) {
	args := m.Called(ctx, in)
	var p *product.Product
	if args.Get(0) != nil {
		p = args.Get(0).(*product.Product)
	}
	return p, args.Error(1)
}

func (m *mockProductService) Update(ctx context.Context, id string, in admin.ProductInput) (*product.Product, error) {
	args := m.Called(ctx, id, in)
	var p *product.Product
	if args.Get(0) != nil {
		p = args.Get(0).(*product.Product)
	}
	return p, args.Error(1)
}

func (m *mockProductService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductService) Seed(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	var list []product.Product
	if args.Get(0) != nil {
		list = args.Get(0).([]product.Product)
	}
	return list, args.Error(1)
}

func (m *mockProductService) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, r)
	return args.String(0), args.Error(1)
}

func newAdminRouter(t *testing.T, svc admin.ProductService) chi.Router {
	t.Helper()
	token, err := jwt.NewBuilder().
		Subject("admin-1").
		Expiration(time.Now().Add(time.Hour)).
		Claim("email", "owner+"+adminMarker+"@example.com").
		Build()
	require.NoError(t, err)
	customer, err := jwt.NewBuilder().Subject("customer-1").Claim("email", "jane@example.com").Build()
	require.NoError(t, err)

	verifier := new(mockVerifier)
	verifier.On("Verify", mock.Anything, adminToken).Return(token, nil)
	verifier.On("Verify", mock.Anything, "customer-token").Return(customer, nil)
	verifier.On("Verify", mock.Anything, mock.Anything).Return(nil, errors.New("invalid signature"))

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		NewAdminHandler(svc, verifier, adminMarker, 1<<20, logger.Discard()).RegisterRoutes(r)
	})
	return r
}

func serve(r http.Handler, req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAdminHandler_RequiresAdmin(t *testing.T) {
	testCases := []struct {
		name         string
		token        string
		expectedCode int
	}{
		{name: "no token", expectedCode: http.StatusUnauthorized},
		{name: "bad token", token: "forged", expectedCode: http.StatusUnauthorized},
		{name: "customer token", token: "customer-token", expectedCode: http.StatusForbidden},
		{name: "admin token", token: adminToken, expectedCode: http.StatusOK},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(mockProductService)
			svc.On("List", mock.Anything).Return([]product.Product{}, nil).Maybe()
			r := newAdminRouter(t, svc)

			// when
			rr := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/admin/products", nil), tc.token)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode != http.StatusOK {
				svc.AssertNotCalled(t, "List", mock.Anything)
			}
		})
	}
}

func TestAdminHandler_Create(t *testing.T) {
	validBody := `{"name":"Desk Lamp","description":"Brass","price":"49.99","category":"Lighting","imageUrl":"https://img.example.com/lamp.jpg","featured":true}`
	testCases := []struct {
		name         string
		body         string
		serviceErr   error
		expectedCode int
		callsService bool
	}{
		{name: "created", body: validBody, expectedCode: http.StatusCreated, callsService: true},
		{name: "missing name", body: `{"description":"Brass","price":"1","category":"Lighting"}`, expectedCode: http.StatusBadRequest},
		{name: "malformed body", body: `{"name":`, expectedCode: http.StatusBadRequest},
		{name: "image required", body: validBody, serviceErr: perrors.ErrImageRequired, expectedCode: http.StatusBadRequest, callsService: true},
		{name: "invalid product", body: validBody, serviceErr: fmt.Errorf("%w: price must be positive", perrors.ErrInvalidProduct), expectedCode: http.StatusBadRequest, callsService: true},
		{name: "store failure", body: validBody, serviceErr: errors.New("db down"), expectedCode: http.StatusInternalServerError, callsService: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(mockProductService)
			if tc.callsService {
				var created *product.Product
				if tc.serviceErr == nil {
					created = &product.Product{ID: uuid.NewString(), Name: "Desk Lamp", Price: decimal.RequireFromString("49.99")}
				}
				svc.On("Create", mock.Anything, mock.MatchedBy(func(in admin.ProductInput) bool {
					return in.Name == "Desk Lamp" && in.Price.Equal(decimal.RequireFromString("49.99")) && in.Featured
				})).Return(created, tc.serviceErr).Once()
			}
			r := newAdminRouter(t, svc)

			// when
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(tc.body))
			rr := serve(r, req, adminToken)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_UpdateAndDelete(t *testing.T) {
	id := uuid.NewString()
	body := `{"name":"Desk Lamp","description":"Brass","price":"59.99","category":"Lighting"}`
	testCases := []struct {
		name         string
		method       string
		id           string
		setup        func(m *mockProductService)
		expectedCode int
	}{
		{
			name:   "update",
			method: http.MethodPut,
			id:     id,
			setup: func(m *mockProductService) {
				m.On("Update", mock.Anything, id, mock.AnythingOfType("admin.ProductInput")).
					Return(&product.Product{ID: id, Name: "Desk Lamp"}, nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "update missing product",
			method: http.MethodPut,
			id:     id,
			setup: func(m *mockProductService) {
				m.On("Update", mock.Anything, id, mock.Anything).Return(nil, perrors.ErrProductNotFound).Once()
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "update invalid id",
			method:       http.MethodPut,
			id:           "nope",
			setup:        func(m *mockProductService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			id:     id,
			setup: func(m *mockProductService) {
				m.On("Delete", mock.Anything, id).Return(nil).Once()
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name:   "delete missing product",
			method: http.MethodDelete,
			id:     id,
			setup: func(m *mockProductService) {
				m.On("Delete", mock.Anything, id).Return(perrors.ErrProductNotFound).Once()
			},
			expectedCode: http.StatusNotFound,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(mockProductService)
			tc.setup(svc)
			r := newAdminRouter(t, svc)
			var reqBody io.Reader
			if tc.method == http.MethodPut {
				reqBody = strings.NewReader(body)
			}

			// when
			rr := serve(r, httptest.NewRequest(tc.method, "/api/v1/admin/products/"+tc.id, reqBody), adminToken)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_Seed(t *testing.T) {
	svc := new(mockProductService)
	svc.On("Seed", mock.Anything).Return([]product.Product{{Name: "A"}, {Name: "B"}}, nil).Once()
	r := newAdminRouter(t, svc)

	rr := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/seed", nil), adminToken)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, []string{"A", "B"}, productNames(decode[[]product.Product](t, rr)))
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestAdminHandler_UploadImage(t *testing.T) {
	testCases := []struct {
		name         string
		field        string
		uploadErr    error
		expectedCode int
		expectedURL  string
	}{
		{name: "uploaded", field: "file", expectedCode: http.StatusCreated, expectedURL: "https://cdn.example.com/lamp.jpg"},
		{name: "missing file part", field: "image", expectedCode: http.StatusBadRequest},
		{name: "provider failure", field: "file", uploadErr: fmt.Errorf("%w: status 500", perrors.ErrUploadFailed), expectedCode: http.StatusBadGateway},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(mockProductService)
			if tc.field == "file" {
				svc.On("UploadImage", mock.Anything, "lamp.jpg", mock.Anything).Return(tc.expectedURL, tc.uploadErr).Once()
			}
			r := newAdminRouter(t, svc)
			body, contentType := multipartBody(t, tc.field, "lamp.jpg", []byte("jpeg-bytes"))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/images", body)
			req.Header.Set("Content-Type", contentType)

			// when
			rr := serve(r, req, adminToken)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedURL != "" {
				assert.Equal(t, map[string]string{"url": tc.expectedURL}, decode[map[string]string](t, rr))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_UploadImageNotMultipart(t *testing.T) {
	svc := new(mockProductService)
	r := newAdminRouter(t, svc)

	rr := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/admin/images", strings.NewReader("{}")), adminToken)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything)
}
