// Package storagetest 所有 DataProvider 实现共用的契约测试
//
// 各后端在自己的 _test.go 中调用 Run，传入一个返回空存储的工厂函数。
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-reviews/internal/shared/idgen"
	"restaurant-reviews/internal/shared/model"
	"restaurant-reviews/internal/shared/storage"
)

// Factory 返回一个空的、已就绪的存储
type Factory func(t *testing.T) storage.DataProvider

// NewUser 构造一个合法用户，email 可区分多个用户
func NewUser(email string) *model.User {
	return &model.User{
		Email:        email,
		PasswordHash: "$2a$04$abcdefghijklmnopqrstuuBD5hZ0E3Vq4v8kq0mMxEoE8d9o1O5u",
		FirstName:    "Grace",
		LastName:     "Hopper",
		Phone:        "555-0100",
		DOB:          "1906-12-09",
		Gender:       "female",
		Address:      model.Address{City: "New York", State: "NY", Country: "USA"},
	}
}

// NewRestaurant 构造一个合法餐厅
func NewRestaurant(name string) *model.Restaurant {
	return &model.Restaurant{
		Name:         name,
		Neighborhood: "Brooklyn",
		Address:      "167 Avenue A, Brooklyn, NY 11211",
		LatLng:       &model.LatLng{Lat: 40.683555, Lng: -73.966393},
		Photograph:   "1.jpg",
		CuisineType:  "Pizza",
		OperatingHours: model.OperatingHours{
			"Monday": "5:00 pm - 11:30 pm",
			"Sunday": "Closed",
		},
	}
}

// NewReview 构造一个合法评论
func NewReview(restaurantID int64, userID string, rating int) *model.Review {
	return &model.Review{
		RestaurantID: restaurantID,
		UserID:       userID,
		Rating:       rating,
		Comments:     "Solid slice, friendly staff.",
	}
}

// Run 执行完整契约测试
func Run(t *testing.T, factory Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, factory(t)) })
	t.Run("UserValidation", func(t *testing.T) { testUserValidation(t, factory(t)) })
	t.Run("UserEmailUnique", func(t *testing.T) { testUserEmailUnique(t, factory(t)) })
	t.Run("Restaurants", func(t *testing.T) { testRestaurants(t, factory(t)) })
	t.Run("RestaurantIDsNotReused", func(t *testing.T) { testRestaurantIDsNotReused(t, factory(t)) })
	t.Run("Reviews", func(t *testing.T) { testReviews(t, factory(t)) })
	t.Run("ReviewRating", func(t *testing.T) { testReviewRating(t, factory(t)) })
	t.Run("ConcurrentCreates", func(t *testing.T) { testConcurrentCreates(t, factory(t)) })
	t.Run("ConcurrentPatches", func(t *testing.T) { testConcurrentPatches(t, factory(t)) })
}

func testUsers(t *testing.T, s storage.DataProvider) {
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.NotNil(t, users)
	assert.Len(t, users, 0)

	u := NewUser("  Grace@Example.com ")
	require.NoError(t, s.CreateUser(ctx, u))
	assert.True(t, idgen.Valid(u.ID), "generated id %q", u.ID)
	assert.NotEmpty(t, u.RegDate)
	assert.Equal(t, "grace@example.com", u.Email)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "grace@example.com", got.Email)
	assert.Equal(t, "New York", got.Address.City)
	assert.Empty(t, got.PasswordHash, "password hash must not be returned")

	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)

	// 部分更新：只修改 phone
	phone := "555-0199"
	updated, err := s.UpdateUser(ctx, u.ID, &model.UserPatch{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", updated.Phone)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, u.RegDate, updated.RegDate)
	assert.Equal(t, u.ID, updated.ID)
	assert.Empty(t, updated.PasswordHash)

	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0199", got.Phone)

	_, err = s.UpdateUser(ctx, "missing", &model.UserPatch{Phone: &phone})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), storage.ErrNotFound)
}

func testUserValidation(t *testing.T, s storage.DataProvider) {
	ctx := context.Background()

	bad := NewUser("not-an-email")
	assert.ErrorIs(t, s.CreateUser(ctx, bad), storage.ErrValidation)

	missing := NewUser("ok@example.com")
	missing.LastName = ""
	assert.ErrorIs(t, s.CreateUser(ctx, missing), storage.ErrValidation)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 0)

	u := NewUser("valid@example.com")
	require.NoError(t, s.CreateUser(ctx, u))
	badEmail := "nope"
	_, err = s.UpdateUser(ctx, u.ID, &model.UserPatch{Email: &badEmail})
	assert.ErrorIs(t, err, storage.ErrValidation)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "valid@example.com", got.Email)
}

func testUserEmailUnique(t *testing.T, s storage.DataProvider) {
	ctx := context.Background()

	a := NewUser("a@example.com")
	require.NoError(t, s.CreateUser(ctx, a))
	assert.ErrorIs(t, s.CreateUser(ctx, NewUser("A@example.com")), storage.ErrDuplicate)

	b := NewUser("b@example.com")
	require.NoError(t, s.CreateUser(ctx, b))
	email := "a@example.com"
	_, err := s.UpdateUser(ctx, b.ID, &model.UserPatch{Email: &email})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	// 自身邮箱不算冲突
	email = "b@example.com"
	_, err = s.UpdateUser(ctx, b.ID, &model.UserPatch{Email: &email})
	assert.NoError(t, err)
}

func testRestaurants(t *testing.T, s storage.DataProvider) {
	ctx := context.Background()

	rs, err := s.ListRestaurants(ctx)
	require.NoError(t, err)
	require.NotNil(t, rs)
	assert.Len(t, rs, 0)

	r1 := NewRestaurant("Roberta's")
	require.NoError(t, s.CreateRestaurant(ctx, r1))
	assert.Greater(t, r1.ID, int64(0))

	r2 := NewRestaurant("Emily")
	require.NoError(t, s.CreateRestaurant(ctx, r2))
	assert.Greater(t, r2.ID, r1.ID)

	got, err := s.GetRestaurant(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Roberta's", got.Name)
	assert.Equal(t, "Pizza", got.CuisineType)
	require.NotNil(t, got.LatLng)
	assert.InDelta(t, 40.683555, got.LatLng.Lat, 1e-9)
	assert.Equal(t, "Closed", got.OperatingHours["Sunday"])

	rs, err = s.ListRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, r1.ID, rs[0].ID)
	assert.Equal(t, r2.ID, rs[1].ID)

	cuisine := "Italian"
	updated, err := s.UpdateRestaurant(ctx, r1.ID, &model.RestaurantPatch{CuisineType: &cuisine})
	require.NoError(t, err)
	assert.Equal(t, "Italian", updated.CuisineType)
	assert.Equal(t, "Roberta's", updated.Name)
	assert.Equal(t, r1.ID, updated.ID)

	empty := ""
	_, err = s.UpdateRestaurant(ctx, r1.ID, &model.RestaurantPatch{Name: &empty})
	assert.ErrorIs(t, err, storage.ErrValidation)

	_, err = s.UpdateRestaurant(ctx, 9999, &model.RestaurantPatch{CuisineType: &cuisine})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	invalid := NewRestaurant("")
	assert.ErrorIs(t, s.CreateRestaurant(ctx, invalid), storage.ErrValidation)

	require.NoError(t, s.DeleteRestaurant(ctx, r1.ID))
	_, err = s.GetRestaurant(ctx, r1.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteRestaurant(ctx, r1.ID), storage.ErrNotFound)

	// 删除后其余记录仍可按原 ID 访问
	got, err = s.GetRestaurant(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, "Emily", got.Name)
}

func testRestaurantIDsNotReused(t *testing.T, s storage.DataProvider) {
	ctx := context.Background()

	r1 := NewRestaurant("First")
	require.NoError(t, s.CreateRestaurant(ctx, r1))
	require.NoError(t, s.DeleteRestaurant(ctx, r1.ID))

	r2 := NewRestaurant("Second")
	require.NoError(t, s.CreateRestaurant(ctx, r2))
	assert.Greater(t, r2.ID, r1.ID)
}

func testReviews(t *testing.T, s storage.DataProvider) {
	ctx := context.Background()

	all, err := s.ListReviews(ctx)
	require.NoError(t, err)
	require.NotNil(t, all)
	assert.Len(t, all, 0)

	a := NewReview(1, "user-a", 4)
	require.NoError(t, s.CreateReview(ctx, a))
	assert.True(t, idgen.Valid(a.ID), "generated id %q", a.ID)
	assert.NotEmpty(t, a.Date)

	b := NewReview(2, "user-b", 2)
	require.NoError(t, s.CreateReview(ctx, b))
	c := NewReview(1, "user-c", 5)
	require.NoError(t, s.CreateReview(ctx, c))

	byRestaurant, err := s.ListReviewsByRestaurant(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byRestaurant, 2)
	for _, r := range byRestaurant {
		assert.Equal(t, int64(1), r.RestaurantID)
	}
	assert.Equal(t, a.ID, byRestaurant[0].ID)
	assert.Equal(t, c.ID, byRestaurant[1].ID)

	none, err := s.ListReviewsByRestaurant(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, none)
	assert.Len(t, none, 0)

	got, err := s.GetReview(ctx, 1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, "user-a", got.UserID)
	assert.Equal(t, a.Date, got.Date)

	// 存在但属于其他餐厅
	_, err = s.GetReview(ctx, 2, a.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	comments := "Changed my mind."
	updated, err := s.UpdateReview(ctx, a.ID, &model.ReviewPatch{Comments: &comments})
	require.NoError(t, err)
	assert.Equal(t, "Changed my mind.", updated.Comments)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, a.Date, updated.Date)

	_, err = s.UpdateReview(ctx, "missing", &model.ReviewPatch{Comments: &comments})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.DeleteReview(ctx, b.ID))
	assert.ErrorIs(t, s.DeleteReview(ctx, b.ID), storage.ErrNotFound)

	all, err = s.ListReviews(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func testReviewRating(t *testing.T, s storage.DataProvider) {
	ctx := context.Background()

	for _, rating := range []int{0, 6} {
		err := s.CreateReview(ctx, NewReview(1, "u", rating))
		assert.ErrorIs(t, err, storage.ErrValidation, "rating %d", rating)
	}
	for _, rating := range []int{1, 5} {
		assert.NoError(t, s.CreateReview(ctx, NewReview(1, "u", rating)), "rating %d", rating)
	}

	r := NewReview(1, "u", 3)
	require.NoError(t, s.CreateReview(ctx, r))
	seven := 7
	_, err := s.UpdateReview(ctx, r.ID, &model.ReviewPatch{Rating: &seven})
	assert.ErrorIs(t, err, storage.ErrValidation)

	got, err := s.GetReview(ctx, 1, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Rating)
}

func testConcurrentCreates(t *testing.T, s storage.DataProvider) {
	ctx := context.Background()
	const n = 8

	var wg sync.WaitGroup
	ids := make([]int64, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := NewRestaurant(fmt.Sprintf("Concurrent %d", i))
			errs[i] = s.CreateRestaurant(ctx, r)
			ids[i] = r.ID
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "duplicate id %d", ids[i])
		seen[ids[i]] = true
	}

	rs, err := s.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Len(t, rs, n)
}

// 并发更新不同字段时，每个补丁都必须保留
func testConcurrentPatches(t *testing.T, s storage.DataProvider) {
	ctx := context.Background()

	u := NewUser("patches@example.com")
	require.NoError(t, s.CreateUser(ctx, u))
	r := NewRestaurant("Patched")
	require.NoError(t, s.CreateRestaurant(ctx, r))

	str := func(v string) *string { return &v }
	userPatches := []*model.UserPatch{
		{FirstName: str("Ada")},
		{LastName: str("Lovelace")},
		{Phone: str("555-0199")},
		{DOB: str("1815-12-10")},
		{Gender: str("f")},
		{Photo: str("ada.png")},
	}
	restaurantPatches := []*model.RestaurantPatch{
		{Name: str("Renamed")},
		{Neighborhood: str("Queens")},
		{Address: str("1 Main St")},
		{Photograph: str("2.jpg")},
		{CuisineType: str("Thai")},
	}

	const rounds = 5
	for round := 0; round < rounds; round++ {
		var wg sync.WaitGroup
		errs := make(chan error, len(userPatches)+len(restaurantPatches))
		for _, p := range userPatches {
			wg.Add(1)
			go func(p *model.UserPatch) {
				defer wg.Done()
				cp := *p
				_, err := s.UpdateUser(ctx, u.ID, &cp)
				errs <- err
			}(p)
		}
		for _, p := range restaurantPatches {
			wg.Add(1)
			go func(p *model.RestaurantPatch) {
				defer wg.Done()
				cp := *p
				_, err := s.UpdateRestaurant(ctx, r.ID, &cp)
				errs <- err
			}(p)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		gotU, err := s.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", gotU.FirstName)
		assert.Equal(t, "Lovelace", gotU.LastName)
		assert.Equal(t, "555-0199", gotU.Phone)
		assert.Equal(t, "1815-12-10", gotU.DOB)
		assert.Equal(t, "f", gotU.Gender)
		assert.Equal(t, "ada.png", gotU.Photo)

		gotR, err := s.GetRestaurant(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", gotR.Name)
		assert.Equal(t, "Queens", gotR.Neighborhood)
		assert.Equal(t, "1 Main St", gotR.Address)
		assert.Equal(t, "2.jpg", gotR.Photograph)
		assert.Equal(t, "Thai", gotR.CuisineType)

		// 复位后进入下一轮
		_, err = s.UpdateUser(ctx, u.ID, &model.UserPatch{
			FirstName: str("x"), LastName: str("x"), Phone: str("x"), DOB: str("x"), Gender: str("x"), Photo: str(""),
		})
		require.NoError(t, err)
		_, err = s.UpdateRestaurant(ctx, r.ID, &model.RestaurantPatch{
			Name: str("x"), Neighborhood: str("x"), Address: str(""), Photograph: str(""), CuisineType: str("x"),
		})
		require.NoError(t, err)
	}
}
