// Package review 评论领域 - HTTP 处理
package review

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"restaurant-reviews/internal/apiserver/httpx"
	"restaurant-reviews/internal/shared/model"
	"restaurant-reviews/internal/shared/storage"
)

// Handler 评论领域 HTTP 处理器
type Handler struct {
	store storage.ReviewStore
	resp  *httpx.Responder
}

// NewHandler 创建评论处理器
func NewHandler(store storage.ReviewStore, resp *httpx.Responder) *Handler {
	return &Handler{store: store, resp: resp}
}

// RegisterRoutes 注册评论相关路由
//
// GET /reviews/{restaurant} 与 PUT/DELETE /reviews/{id} 路径形状相同，按方法区分。
func (h *Handler) RegisterRoutes(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/reviews", h.List)
	mux.HandleFunc("POST "+prefix+"/reviews", h.Create)
	mux.HandleFunc("GET "+prefix+"/reviews/{restaurant}", h.ListByRestaurant)
	mux.HandleFunc("GET "+prefix+"/reviews/{restaurant}/{id}", h.Get)
	mux.HandleFunc("PUT "+prefix+"/reviews/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/reviews/{id}", h.Delete)
}

// RestaurantRef 餐厅标识符，接受数字或数字字符串
type RestaurantRef int64

func (ref *RestaurantRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("restaurant must be an integer id, got %s", data)
	}
	*ref = RestaurantRef(id)
	return nil
}

// Request 创建/更新评论请求体
type Request struct {
	Restaurant *RestaurantRef `json:"restaurant"`
	User       *string        `json:"user"`
	Rating     *int           `json:"rating"`
	Comments   *string        `json:"comments"`
}

func (req *Request) patch() *model.ReviewPatch {
	p := &model.ReviewPatch{
		UserID:   req.User,
		Rating:   req.Rating,
		Comments: req.Comments,
	}
	if req.Restaurant != nil {
		id := int64(*req.Restaurant)
		p.RestaurantID = &id
	}
	return p
}

// List 获取全部评论
// GET /api/reviews
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.store.ListReviews(r.Context())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reviews)
}

// ListByRestaurant 获取餐厅的全部评论
// GET /api/reviews/{restaurant}
func (h *Handler) ListByRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := httpx.PathID(r, "restaurant")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	reviews, err := h.store.ListReviewsByRestaurant(r.Context(), restaurantID)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reviews)
}

// Get 获取餐厅下的单条评论
// GET /api/reviews/{restaurant}/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := httpx.PathID(r, "restaurant")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	rev, err := h.store.GetReview(r.Context(), restaurantID, r.PathValue("id"))
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rev)
}

// Create 创建评论
// POST /api/reviews
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	rev := &model.Review{}
	req.patch().Apply(rev)
	if err := h.store.CreateReview(r.Context(), rev); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rev)
}

// Update 部分更新评论
// PUT /api/reviews/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	rev, err := h.store.UpdateReview(r.Context(), r.PathValue("id"), req.patch())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rev)
}

// Delete 删除评论
// DELETE /api/reviews/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteReview(r.Context(), r.PathValue("id")); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.Message(w, "review deleted")
}
