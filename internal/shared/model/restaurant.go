package model

import (
	"fmt"
	"math"
)

// LatLng 经纬度
type LatLng struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Weekdays 营业时间允许的键
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// OperatingHours 营业时间：星期名 → 自由格式时间段，如 "5:30 pm - 11:00 pm"
type OperatingHours map[string]string

// Restaurant 餐厅
//
// ID 为单调递增序列，删除后不复用。
type Restaurant struct {
	ID             int64          `json:"id" bson:"_id"`
	Name           string         `json:"name" bson:"name"`
	Neighborhood   string         `json:"neighborhood" bson:"neighborhood"`
	Address        string         `json:"address" bson:"address"`
	LatLng         *LatLng        `json:"latlng,omitempty" bson:"latlng,omitempty"`
	Photograph     string         `json:"photograph" bson:"photograph"`
	CuisineType    string         `json:"cuisine_type" bson:"cuisine_type"`
	OperatingHours OperatingHours `json:"operating_hours" bson:"operating_hours"`
}

// Validate 校验完整餐厅记录
func (r *Restaurant) Validate() error {
	if err := requireString("name", r.Name); err != nil {
		return err
	}
	if err := requireString("neighborhood", r.Neighborhood); err != nil {
		return err
	}
	if err := requireString("cuisine_type", r.CuisineType); err != nil {
		return err
	}
	if err := validateLatLng(r.LatLng); err != nil {
		return err
	}
	return validateHours(r.OperatingHours)
}

// RestaurantPatch 餐厅部分更新
//
// OperatingHours 非 nil 时整体替换。
type RestaurantPatch struct {
	Name           *string        `json:"name,omitempty"`
	Neighborhood   *string        `json:"neighborhood,omitempty"`
	Address        *string        `json:"address,omitempty"`
	LatLng         *LatLng        `json:"latlng,omitempty"`
	Photograph     *string        `json:"photograph,omitempty"`
	CuisineType    *string        `json:"cuisine_type,omitempty"`
	OperatingHours OperatingHours `json:"operating_hours,omitempty"`
}

// Validate 校验补丁中提供的字段
func (p *RestaurantPatch) Validate() error {
	if p.Name != nil {
		if err := requireString("name", *p.Name); err != nil {
			return err
		}
	}
	if p.Neighborhood != nil {
		if err := requireString("neighborhood", *p.Neighborhood); err != nil {
			return err
		}
	}
	if p.CuisineType != nil {
		if err := requireString("cuisine_type", *p.CuisineType); err != nil {
			return err
		}
	}
	if err := validateLatLng(p.LatLng); err != nil {
		return err
	}
	return validateHours(p.OperatingHours)
}

// IsEmpty 补丁是否不含任何修改
func (p *RestaurantPatch) IsEmpty() bool {
	return p.Name == nil && p.Neighborhood == nil && p.Address == nil && p.LatLng == nil &&
		p.Photograph == nil && p.CuisineType == nil && p.OperatingHours == nil
}

// Apply 将补丁应用到 r（ID 保持不变）
func (p *RestaurantPatch) Apply(r *Restaurant) {
	setString(&r.Name, p.Name)
	setString(&r.Neighborhood, p.Neighborhood)
	setString(&r.Address, p.Address)
	setString(&r.Photograph, p.Photograph)
	setString(&r.CuisineType, p.CuisineType)
	if p.LatLng != nil {
		ll := *p.LatLng
		r.LatLng = &ll
	}
	if p.OperatingHours != nil {
		r.OperatingHours = p.OperatingHours.Clone()
	}
}

// Clone 深拷贝
func (r *Restaurant) Clone() *Restaurant {
	cp := *r
	if r.LatLng != nil {
		ll := *r.LatLng
		cp.LatLng = &ll
	}
	cp.OperatingHours = r.OperatingHours.Clone()
	return &cp
}

// Clone 拷贝营业时间
func (h OperatingHours) Clone() OperatingHours {
	if h == nil {
		return nil
	}
	cp := make(OperatingHours, len(h))
	for k, v := range h {
		cp[k] = v
	}
	return cp
}

func validateLatLng(ll *LatLng) error {
	if ll == nil {
		return nil
	}
	if math.IsNaN(ll.Lat) || ll.Lat < -90 || ll.Lat > 90 {
		return &ValidationError{Field: "latlng.lat", Message: fmt.Sprintf("%v out of range [-90, 90]", ll.Lat)}
	}
	if math.IsNaN(ll.Lng) || ll.Lng < -180 || ll.Lng > 180 {
		return &ValidationError{Field: "latlng.lng", Message: fmt.Sprintf("%v out of range [-180, 180]", ll.Lng)}
	}
	return nil
}

func validateHours(h OperatingHours) error {
	for day := range h {
		if !isWeekday(day) {
			return &ValidationError{Field: "operating_hours", Message: fmt.Sprintf("unknown day %q", day)}
		}
	}
	return nil
}

func isWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
