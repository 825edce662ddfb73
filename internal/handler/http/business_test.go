package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/repository"
	apperrors "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/errors"
)

func newBusinessTestRouter(repo *mockBusinessRepo) http.Handler {
	handler := NewBusinessHandler(testBusinessService(repo), testLogger())
	return businessRouter(handler)
}

func TestListBusinesses_CityAndZip(t *testing.T) {
	repo := new(mockBusinessRepo)
	router := newBusinessTestRouter(repo)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.BusinessFilter) bool {
		return f.City != nil && *f.City == "Zurich" &&
			f.ZipCode != nil && *f.ZipCode == "8001" &&
			f.Limit == repository.DefaultBusinessLimit
	})).Return([]domain.Business{*sampleBusiness()}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/businesses?city=Zurich&zip=8001", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["total_count"])

	businesses := data["businesses"].([]any)
	require.Len(t, businesses, 1)
	first := businesses[0].(map[string]any)
	assert.Equal(t, "cafe-24-42", first["slug"])
	assert.Equal(t, 4.5, first["average_rating"])

	repo.AssertExpectations(t)
}

func TestListBusinesses_InvalidLimit(t *testing.T) {
	repo := new(mockBusinessRepo)
	router := newBusinessTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/businesses?limit=nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "List")
}

func TestGetBusiness_BySlug(t *testing.T) {
	repo := new(mockBusinessRepo)
	router := newBusinessTestRouter(repo)

	repo.On("GetByID", mock.Anything, int64(42)).Return(sampleBusiness(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/businesses/cafe-24-42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(42), data["business_id"])
	assert.Equal(t, "cafe-24-42", data["slug"])
}

func TestGetBusiness_ByBareID(t *testing.T) {
	repo := new(mockBusinessRepo)
	router := newBusinessTestRouter(repo)

	repo.On("GetByID", mock.Anything, int64(42)).Return(sampleBusiness(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/businesses/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetBusiness_SlugWithoutID(t *testing.T) {
	repo := new(mockBusinessRepo)
	router := newBusinessTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/businesses/just-a-name", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "GetByID")
}

func TestGetBusiness_NotFound(t *testing.T) {
	repo := new(mockBusinessRepo)
	router := newBusinessTestRouter(repo)

	repo.On("GetByID", mock.Anything, int64(99)).Return(nil, apperrors.NotFound("business", 99))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/businesses/gone-99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestListFeatured(t *testing.T) {
	repo := new(mockBusinessRepo)
	router := newBusinessTestRouter(repo)

	repo.On("ListFeatured", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.Business{*sampleBusiness()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/businesses/featured", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	businesses := resp.Data.([]any)
	require.Len(t, businesses, 1)
}

func TestRegisterBusiness_Success(t *testing.T) {
	repo := new(mockBusinessRepo)
	router := newBusinessTestRouter(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Business")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Business).ID = 7
	}).Return(nil)

	b, _ := json.Marshal(RegisterBusinessRequest{
		Name:    "Neue Brasserie",
		City:    "Bern",
		ZipCode: "3001",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/businesses", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, false, data["approved"], "registration must start unapproved")
	assert.Equal(t, "neue-brasserie-7", data["slug"])
}

func TestRegisterBusiness_ValidationError(t *testing.T) {
	repo := new(mockBusinessRepo)
	router := newBusinessTestRouter(repo)

	b, _ := json.Marshal(RegisterBusinessRequest{Email: "not-an-email"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/businesses", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Create")
}

func TestRegisterBusiness_MalformedJSON(t *testing.T) {
	repo := new(mockBusinessRepo)
	router := newBusinessTestRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/businesses", bytes.NewReader([]byte("{nope")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
