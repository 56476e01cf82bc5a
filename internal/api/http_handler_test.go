package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"item-catalog-service/internal/domain"
	"item-catalog-service/internal/query"
	"item-catalog-service/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockItemStorer is a mock implementation of store.ItemStorer
type MockItemStorer struct {
	mock.Mock
}

func (m *MockItemStorer) ListItems(ctx context.Context) ([]domain.Item, error) {
	args := m.Called(ctx)
	var items []domain.Item
	if arg0 := args.Get(0); arg0 != nil {
		items = arg0.([]domain.Item)
	}
	return items, args.Error(1)
}

func (m *MockItemStorer) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemStorer) CreateItem(ctx context.Context, fields domain.ItemFields, category string) (*domain.Item, error) {
	args := m.Called(ctx, fields, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemStorer) UpdateItem(ctx context.Context, id int64, fields domain.ItemFields) (*domain.Item, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemStorer) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Helper for setting up tests with a chi router and handler
func setupTestChiServer(t *testing.T, s store.ItemStorer) *httptest.Server {
	t.Helper()
	router := chi.NewRouter()
	NewHTTPHandler(s, nil).RegisterRoutes(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// Helper that backs a server with a real dataset file.
func setupFileServer(t *testing.T, items []domain.Item) (*httptest.Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, store.WriteItems(path, items))
	return setupTestChiServer(t, store.NewFileStore(path, query.LookupByID)), path
}

func sampleItems() []domain.Item {
	return []domain.Item{
		{ID: 1, Name: "Smart Watch", Brand: "Apple", Price: 150, Rating: 4.5, InStock: true, Category: "Electronics"},
		{ID: 2, Name: "Blender", Brand: "Philips", Price: 80, Rating: 3, InStock: false, Category: "Home"},
		{ID: 3, Name: "Smart TV", Brand: "Samsung", Price: 900, Rating: 4.8, InStock: true, Category: "Electronics"},
		{ID: 4, Name: "Drill", Brand: "Bosch", Price: 120, Rating: 4.1, InStock: true, Category: "Tools"},
		{ID: 5, Name: "Teddy Bear", Brand: "Sony", Price: 20, Rating: 2.2, InStock: false, Category: "Toys"},
	}
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func itemBody(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"description": "desc",
		"brand":       "Nike",
		"price":       19.99,
		"in_stock":    true,
	}
}

func TestHTTPHandler_Root(t *testing.T) {
	server := setupTestChiServer(t, new(MockItemStorer))

	res := doJSON(t, http.MethodGet, server.URL+"/", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	body := decode[map[string]string](t, res)
	assert.Equal(t, apiVersion, body["version"])
	assert.NotEmpty(t, body["message"])
}

func TestHTTPHandler_ListItems(t *testing.T) {
	server, _ := setupFileServer(t, sampleItems())

	tests := []struct {
		query string
		want  []int64
	}{
		{"", []int64{1, 2, 3, 4, 5}},
		{"?skip=1&limit=2", []int64{2, 3}},
		{"?skip=4", []int64{5}},
		{"?skip=10", []int64{}},
		{"?limit=-1", []int64{}},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			for _, path := range []string{"/items/", "/items"} {
				res := doJSON(t, http.MethodGet, server.URL+path+tc.query, nil)
				require.Equal(t, http.StatusOK, res.StatusCode)
				ids := []int64{}
				for _, it := range decode[[]domain.Item](t, res) {
					ids = append(ids, it.ID)
				}
				assert.Equal(t, tc.want, ids)
			}
		})
	}
}

func TestHTTPHandler_ListItems_BadSkip(t *testing.T) {
	server := setupTestChiServer(t, new(MockItemStorer))
	res := doJSON(t, http.MethodGet, server.URL+"/items/?skip=abc", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHTTPHandler_GetItem(t *testing.T) {
	server, _ := setupFileServer(t, sampleItems())

	res := doJSON(t, http.MethodGet, server.URL+"/items/3", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Smart TV", decode[domain.Item](t, res).Name)

	res = doJSON(t, http.MethodGet, server.URL+"/items/6", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "Item not found.", decode[ErrorResponse](t, res).Error)

	for _, bad := range []string{"0", "-2", "abc"} {
		res = doJSON(t, http.MethodGet, server.URL+"/items/"+bad, nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, bad)
	}
}

func TestHTTPHandler_DatasetNotFound(t *testing.T) {
	mockStore := new(MockItemStorer)
	server := setupTestChiServer(t, mockStore)

	mockStore.On("ListItems", mock.Anything).Return(nil, store.ErrDatasetNotFound)
	mockStore.On("GetItem", mock.Anything, int64(1)).Return(nil, fmt.Errorf("wrapped: %w", store.ErrDatasetNotFound))

	for _, path := range []string{"/items/", "/items/1", "/items/search/?q=a", "/items/categories/", "/get-items/"} {
		res := doJSON(t, http.MethodGet, server.URL+path, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode, path)
		assert.Equal(t, "Dataset not found.", decode[ErrorResponse](t, res).Error, path)
	}
	mockStore.AssertExpectations(t)
}

func TestHTTPHandler_InternalError(t *testing.T) {
	mockStore := new(MockItemStorer)
	server := setupTestChiServer(t, mockStore)
	mockStore.On("ListItems", mock.Anything).Return(nil, fmt.Errorf("store: decode: boom")).Once()

	res := doJSON(t, http.MethodGet, server.URL+"/items/", nil)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	mockStore.AssertExpectations(t)
}

func TestHTTPHandler_SearchItems(t *testing.T) {
	server, _ := setupFileServer(t, sampleItems())

	names := func(res *http.Response) []string {
		out := []string{}
		for _, it := range decode[[]domain.Item](t, res) {
			out = append(out, it.Name)
		}
		return out
	}

	res := doJSON(t, http.MethodGet, server.URL+"/items/search/?q=smart", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, []string{"Smart Watch", "Smart TV"}, names(res))

	res = doJSON(t, http.MethodGet, server.URL+"/items/search?q=WAT", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, []string{"Smart Watch"}, names(res))

	res = doJSON(t, http.MethodGet, server.URL+"/items/search/", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, names(res), 5, "absent q matches everything")

	for _, bad := range []string{"toolong", "a-b", "a%20b"} {
		res = doJSON(t, http.MethodGet, server.URL+"/items/search/?q="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, bad)
	}
}

func TestHTTPHandler_ListByCategories(t *testing.T) {
	server, _ := setupFileServer(t, sampleItems())

	res := doJSON(t, http.MethodGet, server.URL+"/items/categories/?item-category=Toys&item-category=Tools", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	body := decode[ItemsResponse[domain.CategoryView]](t, res)
	assert.Equal(t, []domain.CategoryView{
		{Name: "Drill", Category: "Tools"},
		{Name: "Teddy Bear", Category: "Toys"},
	}, body.Items)

	res = doJSON(t, http.MethodGet, server.URL+"/items/categories", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, decode[ItemsResponse[domain.CategoryView]](t, res).Items, 5)
}

func TestHTTPHandler_FilterItems(t *testing.T) {
	server, _ := setupFileServer(t, sampleItems())

	ids := func(res *http.Response) []int64 {
		out := []int64{}
		for _, it := range decode[ItemsResponse[domain.Item]](t, res).Items {
			out = append(out, it.ID)
		}
		return out
	}

	tests := []struct {
		query string
		want  []int64
	}{
		{"", []int64{1, 2, 3, 4, 5}},
		{"?min_price=100&max_price=200", []int64{1, 4}},
		{"?min_price=100&max_price=200&category=Electronics", []int64{1}},
		{"?brand=Sony", []int64{5}},
		{"?in_stock=false", []int64{2, 5}},
		{"?in_stock=true&category=Electronics", []int64{1, 3}},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			res := doJSON(t, http.MethodGet, server.URL+"/get-items/"+tc.query, nil)
			require.Equal(t, http.StatusOK, res.StatusCode)
			assert.Equal(t, tc.want, ids(res))
		})
	}
}

func TestHTTPHandler_FilterItems_RejectsBadParams(t *testing.T) {
	server := setupTestChiServer(t, new(MockItemStorer))

	for _, q := range []string{"?color=red", "?min_price=cheap", "?in_stock=maybe", "?category=Toys&page=2"} {
		res := doJSON(t, http.MethodGet, server.URL+"/get-items/"+q, nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, q)
		assert.Contains(t, decode[ErrorResponse](t, res).Error, "Validation failed", q)
	}
}

func TestHTTPHandler_CreateItem_EndToEnd(t *testing.T) {
	server, path := setupFileServer(t, []domain.Item{
		{ID: 1, Name: "Ball", Description: "Round", Brand: "Nike", Price: 10, InStock: true, Category: "Toys"},
	})

	res := doJSON(t, http.MethodPost, server.URL+"/items/Food", itemBody("Apple Pie"))
	require.Equal(t, http.StatusCreated, res.StatusCode)
	body := decode[MessageResponse](t, res)
	assert.Equal(t, "Item created successfully.", body.Message)
	require.NotNil(t, body.Item)
	assert.Equal(t, int64(2), body.Item.ID)
	assert.Equal(t, "Food", body.Item.Category)
	assert.Equal(t, 0.0, body.Item.Rating)

	items, err := store.ReadItems(path)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[1].ID)
	assert.Equal(t, "Food", items[1].Category)
}

func TestHTTPHandler_CreateItem_Rejections(t *testing.T) {
	mockStore := new(MockItemStorer)
	server := setupTestChiServer(t, mockStore)

	res := doJSON(t, http.MethodPost, server.URL+"/items/Furniture", itemBody("Sofa"))
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	incomplete := itemBody("No price")
	delete(incomplete, "price")
	res = doJSON(t, http.MethodPost, server.URL+"/items/Toys", incomplete)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, decode[ErrorResponse](t, res).Error, "Validation failed")

	wrongType := itemBody("Bad")
	wrongType["price"] = "free"
	res = doJSON(t, http.MethodPost, server.URL+"/items/Toys", wrongType)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, decode[ErrorResponse](t, res).Error, "Invalid request payload")

	mockStore.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestHTTPHandler_CreateItem_PassesFieldsToStore(t *testing.T) {
	mockStore := new(MockItemStorer)
	server := setupTestChiServer(t, mockStore)

	body := itemBody("Lamp")
	body["rating"] = 4.2
	body["in_stock"] = false
	want := domain.ItemFields{Name: "Lamp", Description: "desc", Brand: "Nike", Price: 19.99, Rating: 4.2, InStock: false}
	created := &domain.Item{ID: 9, Name: "Lamp", Category: "Home"}
	mockStore.On("CreateItem", mock.Anything, want, "Home").Return(created, nil).Once()

	res := doJSON(t, http.MethodPost, server.URL+"/items/Home", body)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, int64(9), decode[MessageResponse](t, res).Item.ID)
	mockStore.AssertExpectations(t)
}

func TestHTTPHandler_UpdateItem(t *testing.T) {
	server, path := setupFileServer(t, sampleItems())
	before, err := store.ReadItems(path)
	require.NoError(t, err)

	res := doJSON(t, http.MethodPut, server.URL+"/items/2", itemBody("Mixer"))
	require.Equal(t, http.StatusOK, res.StatusCode)
	body := decode[MessageResponse](t, res)
	assert.Equal(t, "Item updated successfully.", body.Message)
	assert.Equal(t, int64(2), body.Item.ID)
	assert.Equal(t, "Mixer", body.Item.Name)
	assert.Equal(t, "Home", body.Item.Category)

	after, err := store.ReadItems(path)
	require.NoError(t, err)
	require.Len(t, after, 5)
	assert.Equal(t, *body.Item, after[1])
	for _, i := range []int{0, 2, 3, 4} {
		assert.Equal(t, before[i], after[i])
	}
}

func TestHTTPHandler_UpdateItem_Category(t *testing.T) {
	server, _ := setupFileServer(t, sampleItems())

	withCategory := itemBody("Mixer")
	withCategory["category"] = "Food"
	res := doJSON(t, http.MethodPut, server.URL+"/items/2", withCategory)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Food", decode[MessageResponse](t, res).Item.Category)

	withCategory["category"] = "Garden"
	res = doJSON(t, http.MethodPut, server.URL+"/items/2", withCategory)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHTTPHandler_UpdateItem_NotFound(t *testing.T) {
	server, _ := setupFileServer(t, sampleItems())

	res := doJSON(t, http.MethodPut, server.URL+"/items/42", itemBody("Ghost"))
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "Item not found.", decode[ErrorResponse](t, res).Error)
}

func TestHTTPHandler_Healthz(t *testing.T) {
	mockStore := new(MockItemStorer)
	server := setupTestChiServer(t, mockStore)
	mockStore.On("Ping", mock.Anything).Return(store.ErrDatasetNotFound).Once()

	res := doJSON(t, http.MethodGet, server.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "unhealthy", decode[map[string]string](t, res)["dataset"])
	mockStore.AssertExpectations(t)
}
