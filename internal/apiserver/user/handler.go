// Package user 用户领域 - HTTP 处理
package user

import (
	"net/http"

	"restaurant-reviews/internal/apiserver/auth"
	"restaurant-reviews/internal/apiserver/httpx"
	"restaurant-reviews/internal/shared/model"
	"restaurant-reviews/internal/shared/storage"
)

// PasswordHasher 密码哈希接口（测试中可替换为低代价实现）
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Handler 用户领域 HTTP 处理器
type Handler struct {
	store  storage.UserStore
	hasher PasswordHasher
	resp   *httpx.Responder
}

// NewHandler 创建用户处理器
func NewHandler(store storage.UserStore, hasher PasswordHasher, resp *httpx.Responder) *Handler {
	return &Handler{store: store, hasher: hasher, resp: resp}
}

// RegisterRoutes 注册用户相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/users", h.List)
	mux.HandleFunc("POST "+prefix+"/users", h.Create)
	mux.HandleFunc("GET "+prefix+"/users/{id}", h.Get)
	mux.HandleFunc("PUT "+prefix+"/users/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/users/{id}", h.Delete)
}

// CreateRequest 创建用户请求体
type CreateRequest struct {
	Email     string        `json:"email"`
	Password  string        `json:"password"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Phone     string        `json:"phone"`
	Gender    string        `json:"gender"`
	DOB       string        `json:"dob"`
	Photo     string        `json:"photo"`
	Address   model.Address `json:"address"`
}

// UpdateRequest 更新用户请求体，缺省字段保持不变
type UpdateRequest struct {
	Email     *string        `json:"email"`
	Password  *string        `json:"password"`
	FirstName *string        `json:"firstName"`
	LastName  *string        `json:"lastName"`
	Phone     *string        `json:"phone"`
	Gender    *string        `json:"gender"`
	DOB       *string        `json:"dob"`
	Photo     *string        `json:"photo"`
	Address   *model.Address `json:"address"`
}

// List 获取全部用户
// GET /api/users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

// Get 获取单个用户
// GET /api/users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.store.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// Create 创建用户
// POST /api/users
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	hash, err := h.hashPassword(req.Password)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	u := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		DOB:          req.DOB,
		Gender:       req.Gender,
		Photo:        req.Photo,
		Address:      req.Address,
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u.Public())
}

// Update 部分更新用户
// PUT /api/users/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	patch := &model.UserPatch{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		DOB:       req.DOB,
		Gender:    req.Gender,
		Photo:     req.Photo,
		Address:   req.Address,
	}
	if req.Password != nil {
		hash, err := h.hashPassword(*req.Password)
		if err != nil {
			h.resp.Error(w, r, err)
			return
		}
		patch.PasswordHash = &hash
	}

	u, err := h.store.UpdateUser(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u.Public())
}

// Delete 删除用户
// DELETE /api/users/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	httpx.Message(w, "user deleted")
}

func (h *Handler) hashPassword(password string) (string, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return "", err
	}
	return h.hasher.Hash(password)
}
