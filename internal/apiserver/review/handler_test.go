package review

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
	"restaurant-reviews/internal/shared/storage/filestore"
)

func setup(t *testing.T) *http.ServeMux {
	t.Helper()
	store, err := filestore.Open(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

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

func create(t *testing.T, mux http.Handler, body string) model.Review {
	t.Helper()
	w := request(mux, http.MethodPost, "/api/reviews", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rev model.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rev))
	return rev
}

func TestCreate(t *testing.T) {
	mux := setup(t)

	rev := create(t, mux, `{"restaurant":1,"user":"u-1","rating":4,"comments":"Great dumplings"}`)
	assert.Len(t, rev.ID, 36)
	assert.Equal(t, int64(1), rev.RestaurantID)
	assert.NotEmpty(t, rev.Date)

	// 数字字符串形式的餐厅标识符
	rev = create(t, mux, `{"restaurant":"2","user":"u-1","rating":5,"comments":"ok"}`)
	assert.Equal(t, int64(2), rev.RestaurantID)
}

func TestCreate_Invalid(t *testing.T) {
	mux := setup(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"rating":`},
		{"rating too high", `{"restaurant":1,"user":"u","rating":6,"comments":"x"}`},
		{"rating too low", `{"restaurant":1,"user":"u","rating":0,"comments":"x"}`},
		{"non numeric restaurant", `{"restaurant":"abc","user":"u","rating":3,"comments":"x"}`},
		{"missing restaurant", `{"user":"u","rating":3,"comments":"x"}`},
		{"missing user", `{"restaurant":1,"rating":3,"comments":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(mux, http.MethodPost, "/api/reviews", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestListByRestaurantAndGet(t *testing.T) {
	mux := setup(t)

	a := create(t, mux, `{"restaurant":1,"user":"u-1","rating":4,"comments":"a"}`)
	create(t, mux, `{"restaurant":2,"user":"u-2","rating":3,"comments":"b"}`)
	c := create(t, mux, `{"restaurant":1,"user":"u-3","rating":2,"comments":"c"}`)

	w := request(mux, http.MethodGet, "/api/reviews/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, c.ID, list[1].ID)

	w = request(mux, http.MethodGet, "/api/reviews", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 3)

	w = request(mux, http.MethodGet, "/api/reviews/9", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = request(mux, http.MethodGet, "/api/reviews/1/"+a.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	// 评论存在但属于其他餐厅
	assert.Equal(t, http.StatusNotFound, request(mux, http.MethodGet, "/api/reviews/2/"+a.ID, "").Code)
	assert.Equal(t, http.StatusBadRequest, request(mux, http.MethodGet, "/api/reviews/x/"+a.ID, "").Code)
}

func TestUpdateAndDelete(t *testing.T) {
	mux := setup(t)
	rev := create(t, mux, `{"restaurant":1,"user":"u-1","rating":4,"comments":"a"}`)

	w := request(mux, http.MethodPut, "/api/reviews/"+rev.ID, `{"rating":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got model.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Rating)
	assert.Equal(t, "a", got.Comments)
	assert.Equal(t, rev.Date, got.Date)

	assert.Equal(t, http.StatusBadRequest, request(mux, http.MethodPut, "/api/reviews/"+rev.ID, `{"rating":10}`).Code)
	assert.Equal(t, http.StatusNotFound, request(mux, http.MethodPut, "/api/reviews/nope", `{"rating":2}`).Code)

	w = request(mux, http.MethodDelete, "/api/reviews/"+rev.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"review deleted"}`, w.Body.String())
	assert.Equal(t, http.StatusNotFound, request(mux, http.MethodDelete, "/api/reviews/"+rev.ID, "").Code)
}

func TestRestaurantRef_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    RestaurantRef
		wantErr bool
	}{
		{`3`, 3, false},
		{`"12"`, 12, false},
		{`1.5`, 0, true},
		{`"x"`, 0, true},
	}
	for _, tt := range tests {
		var ref RestaurantRef
		err := json.Unmarshal([]byte(tt.in), &ref)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, ref)
	}
}
