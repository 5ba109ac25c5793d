package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"restaurant-reviews/internal/apiserver/auth"
	"restaurant-reviews/internal/apiserver/httpx"
	"restaurant-reviews/internal/shared/storage/filestore"
)

// recordingHasher 记录被哈希的密码，避免测试中的 bcrypt 开销
type recordingHasher struct {
	seen []string
}

func (h *recordingHasher) Hash(password string) (string, error) {
	h.seen = append(h.seen, password)
	return "hashed:" + password, nil
}

func setup(t *testing.T) (*http.ServeMux, *recordingHasher) {
	t.Helper()
	store, err := filestore.Open(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	hasher := &recordingHasher{}
	mux := http.NewServeMux()
	NewHandler(store, hasher, httpx.NewResponder(false, nil)).RegisterRoutes(mux, "/api")
	return mux, hasher
}

func do(t *testing.T, mux http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func validUser(email string) map[string]any {
	return map[string]any{
		"email":     email,
		"password":  "pw-123",
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"phone":     "555-0100",
		"gender":    "female",
		"dob":       "1815-12-10",
		"address":   map[string]string{"city": "London", "state": "LDN", "country": "UK"},
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestCreateAndGet(t *testing.T) {
	mux, hasher := setup(t)

	w := do(t, mux, http.MethodPost, "/api/users", validUser("  Ada@Example.COM "))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode(t, w)

	id, _ := created["uid"].(string)
	assert.Len(t, id, 36)
	assert.Equal(t, "ada@example.com", created["email"])
	assert.NotEmpty(t, created["regDate"])
	assert.NotContains(t, created, "password")
	assert.Equal(t, []string{"pw-123"}, hasher.seen)

	w = do(t, mux, http.MethodGet, "/api/users/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, "Ada", got["firstName"])
	assert.NotContains(t, got, "password")

	w = do(t, mux, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestCreate_Errors(t *testing.T) {
	mux, _ := setup(t)

	noPassword := validUser("a@b.com")
	delete(noPassword, "password")
	badEmail := validUser("not-an-email")

	tests := []struct {
		name string
		body any
		want int
	}{
		{"malformed json", `{"email":`, http.StatusBadRequest},
		{"empty body", "", http.StatusBadRequest},
		{"missing password", noPassword, http.StatusBadRequest},
		{"invalid email", badEmail, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, mux, http.MethodPost, "/api/users", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Contains(t, decode(t, w), "error")
		})
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	mux, _ := setup(t)

	require.Equal(t, http.StatusOK, do(t, mux, http.MethodPost, "/api/users", validUser("dup@example.com")).Code)
	w := do(t, mux, http.MethodPost, "/api/users", validUser("DUP@example.com"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdate(t *testing.T) {
	mux, hasher := setup(t)

	created := decode(t, do(t, mux, http.MethodPost, "/api/users", validUser("ada@example.com")))
	id := created["uid"].(string)

	w := do(t, mux, http.MethodPut, "/api/users/"+id, map[string]any{"phone": "555-0199", "password": "new-pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)
	assert.Equal(t, "555-0199", updated["phone"])
	assert.Equal(t, "Ada", updated["firstName"])
	assert.Equal(t, created["regDate"], updated["regDate"])
	assert.NotContains(t, updated, "password")
	assert.Equal(t, []string{"pw-123", "new-pw"}, hasher.seen)

	w = do(t, mux, http.MethodPut, "/api/users/"+id, map[string]any{"password": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, mux, http.MethodPut, "/api/users/missing", map[string]any{"phone": "1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOverlongPassword(t *testing.T) {
	store, err := filestore.Open(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	mux := http.NewServeMux()
	NewHandler(store, auth.NewHasher(bcrypt.MinCost), httpx.NewResponder(false, nil)).RegisterRoutes(mux, "/api")

	long := strings.Repeat("p", 80)

	body := validUser("long@example.com")
	body["password"] = long
	w := do(t, mux, http.MethodPost, "/api/users", body)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w)["error"], "password")

	w = do(t, mux, http.MethodPost, "/api/users", validUser("ok@example.com"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id := decode(t, w)["uid"].(string)

	w = do(t, mux, http.MethodPut, "/api/users/"+id, map[string]any{"password": long})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w)["error"], "password")

	w = do(t, mux, http.MethodPut, "/api/users/"+id, map[string]any{"password": strings.Repeat("p", auth.MaxPasswordBytes)})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestDelete(t *testing.T) {
	mux, _ := setup(t)

	id := decode(t, do(t, mux, http.MethodPost, "/api/users", validUser("ada@example.com")))["uid"].(string)

	w := do(t, mux, http.MethodDelete, "/api/users/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"user deleted"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/api/users/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodDelete, "/api/users/"+id, nil).Code)
}

func TestLegacyErrorStatus(t *testing.T) {
	store, err := filestore.Open(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	defer store.Close()

	mux := http.NewServeMux()
	NewHandler(store, &recordingHasher{}, httpx.NewResponder(true, nil)).RegisterRoutes(mux, "/api")

	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodPost, "/api/users", `{`).Code)
}
