package model

import "fmt"

// 评分范围
const (
	MinRating = 1
	MaxRating = 5
)

// Review 评论
type Review struct {
	ID           string `json:"id" bson:"_id"`
	RestaurantID int64  `json:"restaurant" bson:"restaurant"`
	UserID       string `json:"user" bson:"user"`
	Rating       int    `json:"rating" bson:"rating"`
	Comments     string `json:"comments" bson:"comments"`
	Date         string `json:"date" bson:"date"`
}

// Validate 校验完整评论记录
func (r *Review) Validate() error {
	if r.RestaurantID <= 0 {
		return &ValidationError{Field: "restaurant", Message: "must be a positive restaurant id"}
	}
	if err := requireString("user", r.UserID); err != nil {
		return err
	}
	if err := validateRating(r.Rating); err != nil {
		return err
	}
	return requireString("comments", r.Comments)
}

// ReviewPatch 评论部分更新
type ReviewPatch struct {
	RestaurantID *int64  `json:"restaurant,omitempty"`
	UserID       *string `json:"user,omitempty"`
	Rating       *int    `json:"rating,omitempty"`
	Comments     *string `json:"comments,omitempty"`
}

// Validate 校验补丁中提供的字段
func (p *ReviewPatch) Validate() error {
	if p.RestaurantID != nil && *p.RestaurantID <= 0 {
		return &ValidationError{Field: "restaurant", Message: "must be a positive restaurant id"}
	}
	if p.UserID != nil {
		if err := requireString("user", *p.UserID); err != nil {
			return err
		}
	}
	if p.Rating != nil {
		if err := validateRating(*p.Rating); err != nil {
			return err
		}
	}
	if p.Comments != nil {
		return requireString("comments", *p.Comments)
	}
	return nil
}

// IsEmpty 补丁是否不含任何修改
func (p *ReviewPatch) IsEmpty() bool {
	return p.RestaurantID == nil && p.UserID == nil && p.Rating == nil && p.Comments == nil
}

// Apply 将补丁应用到 r（ID 与 Date 保持不变）
func (p *ReviewPatch) Apply(r *Review) {
	if p.RestaurantID != nil {
		r.RestaurantID = *p.RestaurantID
	}
	setString(&r.UserID, p.UserID)
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	setString(&r.Comments, p.Comments)
}

func validateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return &ValidationError{Field: "rating", Message: fmt.Sprintf("%d out of range [%d, %d]", rating, MinRating, MaxRating)}
	}
	return nil
}
