package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/storefront/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDInjector(t *testing.T) {
	testCases := []struct {
		name     string
		incoming string
	}{
		{name: "generated", incoming: ""},
		{name: "propagated", incoming: "abc-123"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var seen string
			h := RequestIDInjector(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = middleware.GetReqID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header.Set(middleware.RequestIDHeader, tc.incoming)
			}
			rr := httptest.NewRecorder()

			// when
			h.ServeHTTP(rr, req)

			// then
			require.NotEmpty(t, seen)
			if tc.incoming != "" {
				assert.Equal(t, tc.incoming, seen)
			}
			assert.Equal(t, seen, rr.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Quantity int `json:"quantity" validate:"required,min=1"`
	}
	testCases := []struct {
		name         string
		payload      string
		expectedOK   bool
		expectedCode int
		expectedBody string
	}{
		{name: "valid", payload: `{"quantity":2}`, expectedOK: true},
		{name: "malformed", payload: `{"quantity":`, expectedCode: http.StatusBadRequest, expectedBody: `{"error":"Invalid request body"}`},
		{name: "rule violated", payload: `{"quantity":0}`, expectedCode: http.StatusBadRequest, expectedBody: `{"validation_errors":{"Quantity":"failed on rule: required"}}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.payload))
			rr := httptest.NewRecorder()
			var dst body

			// when
			ok := DecodeJSON(rr, req, logger.Discard(), validator.New(), &dst)

			// then
			assert.Equal(t, tc.expectedOK, ok)
			if tc.expectedOK {
				assert.Equal(t, 2, dst.Quantity)
				return
			}
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func TestParseOptionalGte(t *testing.T) {
	testCases := []struct {
		name       string
		query      string
		expected   int
		expectedOK bool
	}{
		{name: "absent uses default", query: "", expected: 4, expectedOK: true},
		{name: "valid", query: "?n=8", expected: 8, expectedOK: true},
		{name: "below minimum", query: "?n=-1", expectedOK: false},
		{name: "not a number", query: "?n=abc", expectedOK: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)
			rr := httptest.NewRecorder()

			got, ok := ParseOptionalGte(req, rr, logger.Discard(), "n", 0, 4)

			assert.Equal(t, tc.expectedOK, ok)
			if ok {
				assert.Equal(t, tc.expected, got)
				return
			}
			var resp map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], "Invalid n number")
		})
	}
}
