// Handler 单元测试（使用 Mock 隔离存储层）
package restaurant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-reviews/internal/apiserver/httpx"
	"restaurant-reviews/internal/shared/model"
	"restaurant-reviews/internal/shared/storage"
)

// ============================================================================
// Mock 实现（实现 storage.RestaurantStore 接口）
// ============================================================================

type mockStore struct {
	items  map[int64]*model.Restaurant
	nextID int64

	// 控制行为
	err error
}

func newMockStore() *mockStore {
	return &mockStore{items: make(map[int64]*model.Restaurant), nextID: 1}
}

func (m *mockStore) ListRestaurants(ctx context.Context) ([]*model.Restaurant, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*model.Restaurant, 0, len(m.items))
	for id := int64(1); id < m.nextID; id++ {
		if r, ok := m.items[id]; ok {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (m *mockStore) GetRestaurant(ctx context.Context, id int64) (*model.Restaurant, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return r.Clone(), nil
}

func (m *mockStore) CreateRestaurant(ctx context.Context, r *model.Restaurant) error {
	if m.err != nil {
		return m.err
	}
	if err := r.Validate(); err != nil {
		return err
	}
	r.ID = m.nextID
	m.nextID++
	m.items[r.ID] = r.Clone()
	return nil
}

func (m *mockStore) UpdateRestaurant(ctx context.Context, id int64, patch *model.RestaurantPatch) (*model.Restaurant, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	next := r.Clone()
	patch.Apply(next)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	m.items[id] = next
	return next.Clone(), nil
}

func (m *mockStore) DeleteRestaurant(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.items[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// ============================================================================
// 测试
// ============================================================================

const createBody = `{
	"name": "Mission Chinese Food",
	"neighborhood": "Manhattan",
	"address": "171 E Broadway, New York, NY 10002",
	"latlng": {"lat": 40.713829, "lng": -73.989667},
	"photograph": "1.jpg",
	"type": "Asian",
	"hours": {"Monday": "5:30 pm - 11:00 pm"}
}`

func setup(store *mockStore) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(store, httpx.NewResponder(false, nil)).RegisterRoutes(mux, "/api")
	return mux
}

func request(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestCreate(t *testing.T) {
	store := newMockStore()
	mux := setup(store)

	w := request(mux, http.MethodPost, "/api/restaurants", createBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got model.Restaurant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Asian", got.CuisineType)
	assert.Equal(t, "5:30 pm - 11:00 pm", got.OperatingHours["Monday"])
	require.NotNil(t, got.LatLng)
	assert.InDelta(t, 40.713829, got.LatLng.Lat, 1e-9)
}

func TestCreate_ResponseFieldNames(t *testing.T) {
	mux := setup(newMockStore())

	w := request(mux, http.MethodPost, "/api/restaurants",
		`{"name":"Emily","neighborhood":"Brooklyn","cuisine_type":"Pizza","operating_hours":{"Sunday":"12:00 pm - 10:00 pm"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got model.Restaurant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Pizza", got.CuisineType)
	assert.Contains(t, got.OperatingHours, "Sunday")
}

func TestCreate_Invalid(t *testing.T) {
	mux := setup(newMockStore())

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"name":`},
		{"missing name", `{"neighborhood":"Queens","type":"Thai"}`},
		{"bad latitude", `{"name":"X","neighborhood":"Queens","type":"Thai","latlng":{"lat":123,"lng":0}}`},
		{"unknown weekday", `{"name":"X","neighborhood":"Queens","type":"Thai","hours":{"Funday":"all day"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(mux, http.MethodPost, "/api/restaurants", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestGet_BadID(t *testing.T) {
	mux := setup(newMockStore())

	for _, id := range []string{"abc", "0", "-1", "1.5"} {
		w := request(mux, http.MethodGet, "/api/restaurants/"+id, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
	}
	assert.Equal(t, http.StatusNotFound, request(mux, http.MethodGet, "/api/restaurants/7", "").Code)
}

func TestUpdateAndDelete(t *testing.T) {
	store := newMockStore()
	mux := setup(store)
	require.Equal(t, http.StatusOK, request(mux, http.MethodPost, "/api/restaurants", createBody).Code)

	w := request(mux, http.MethodPut, "/api/restaurants/1", `{"neighborhood":"Queens"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got model.Restaurant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Queens", got.Neighborhood)
	assert.Equal(t, "Mission Chinese Food", got.Name)

	w = request(mux, http.MethodPut, "/api/restaurants/1", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(mux, http.MethodDelete, "/api/restaurants/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"restaurant deleted"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, request(mux, http.MethodDelete, "/api/restaurants/1", "").Code)
}

func TestList_StoreErrors(t *testing.T) {
	store := newMockStore()
	mux := setup(store)

	store.err = storage.ErrUnavailable
	assert.Equal(t, http.StatusServiceUnavailable, request(mux, http.MethodGet, "/api/restaurants", "").Code)

	store.err = storage.ErrPersistence
	assert.Equal(t, http.StatusInternalServerError, request(mux, http.MethodGet, "/api/restaurants", "").Code)

	store.err = nil
	w := request(mux, http.MethodGet, "/api/restaurants", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
