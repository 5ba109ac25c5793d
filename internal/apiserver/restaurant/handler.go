// Package restaurant 餐厅领域 - HTTP 处理
package restaurant

import (
	"net/http"

	"restaurant-reviews/internal/apiserver/httpx"
	"restaurant-reviews/internal/shared/model"
	"restaurant-reviews/internal/shared/storage"
)

// Handler 餐厅领域 HTTP 处理器
type Handler struct {
	store storage.RestaurantStore
	resp  *httpx.Responder
}

// NewHandler 创建餐厅处理器
func NewHandler(store storage.RestaurantStore, resp *httpx.Responder) *Handler {
	return &Handler{store: store, resp: resp}
}

// RegisterRoutes 注册餐厅相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/restaurants", h.List)
	mux.HandleFunc("POST "+prefix+"/restaurants", h.Create)
	mux.HandleFunc("GET "+prefix+"/restaurants/{id}", h.Get)
	mux.HandleFunc("PUT "+prefix+"/restaurants/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/restaurants/{id}", h.Delete)
}

// Request 创建/更新餐厅请求体
//
// type/hours 为请求字段名；cuisine_type/operating_hours 与响应字段名一致，同样接受。
// 创建时缺省字段按空值处理，更新时缺省字段保持不变。
type Request struct {
	Name           *string              `json:"name"`
	Neighborhood   *string              `json:"neighborhood"`
	Address        *string              `json:"address"`
	LatLng         *model.LatLng        `json:"latlng"`
	Photograph     *string              `json:"photograph"`
	Type           *string              `json:"type"`
	Hours          model.OperatingHours `json:"hours"`
	CuisineType    *string              `json:"cuisine_type"`
	OperatingHours model.OperatingHours `json:"operating_hours"`
}

func (req *Request) patch() *model.RestaurantPatch {
	p := &model.RestaurantPatch{
		Name:           req.Name,
		Neighborhood:   req.Neighborhood,
		Address:        req.Address,
		LatLng:         req.LatLng,
		Photograph:     req.Photograph,
		CuisineType:    req.Type,
		OperatingHours: req.Hours,
	}
	if p.CuisineType == nil {
		p.CuisineType = req.CuisineType
	}
	if p.OperatingHours == nil {
		p.OperatingHours = req.OperatingHours
	}
	return p
}

// List 获取全部餐厅
// GET /api/restaurants
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rs, err := h.store.ListRestaurants(r.Context())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rs)
}

// Get 获取单个餐厅
// GET /api/restaurants/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	rest, err := h.store.GetRestaurant(r.Context(), id)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rest)
}

// Create 创建餐厅，标识符由存储层分配
// POST /api/restaurants
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	rest := &model.Restaurant{}
	req.patch().Apply(rest)
	if err := h.store.CreateRestaurant(r.Context(), rest); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rest)
}

// Update 部分更新餐厅
// PUT /api/restaurants/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	rest, err := h.store.UpdateRestaurant(r.Context(), id, req.patch())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rest)
}

// Delete 删除餐厅（不级联删除评论）
// DELETE /api/restaurants/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.store.DeleteRestaurant(r.Context(), id); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.Message(w, "restaurant deleted")
}
