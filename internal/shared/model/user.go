package model

// Address 用户地址
type Address struct {
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Country string `json:"country" bson:"country"`
}

// User 用户
//
// ID 与 RegDate 在创建时由存储层分配，之后不可修改。
type User struct {
	ID           string  `json:"uid" bson:"_id"`
	Email        string  `json:"email" bson:"email"`
	PasswordHash string  `json:"-" bson:"password,omitempty"` // never expose in JSON
	FirstName    string  `json:"firstName" bson:"firstName"`
	LastName     string  `json:"lastName" bson:"lastName"`
	Phone        string  `json:"phone" bson:"phone"`
	DOB          string  `json:"dob" bson:"dob"`
	Gender       string  `json:"gender" bson:"gender"`
	Photo        string  `json:"photo" bson:"photo"`
	RegDate      string  `json:"regDate" bson:"regDate"`
	Address      Address `json:"address" bson:"address"`
}

// Normalize 规范化邮箱（去空白 + 小写）
func (u *User) Normalize() {
	u.Email = NormalizeEmail(u.Email)
}

// Validate 校验完整用户记录
func (u *User) Validate() error {
	if err := validateEmail(u.Email); err != nil {
		return err
	}
	required := []struct{ field, value string }{
		{"firstName", u.FirstName},
		{"lastName", u.LastName},
		{"phone", u.Phone},
		{"dob", u.DOB},
		{"gender", u.Gender},
		{"address.city", u.Address.City},
		{"address.state", u.Address.State},
		{"address.country", u.Address.Country},
	}
	for _, r := range required {
		if err := requireString(r.field, r.value); err != nil {
			return err
		}
	}
	return nil
}

// UserPatch 用户部分更新
//
// nil 字段表示不修改。Address 非 nil 时整体替换。
type UserPatch struct {
	Email        *string  `json:"email,omitempty"`
	PasswordHash *string  `json:"-"`
	FirstName    *string  `json:"firstName,omitempty"`
	LastName     *string  `json:"lastName,omitempty"`
	Phone        *string  `json:"phone,omitempty"`
	DOB          *string  `json:"dob,omitempty"`
	Gender       *string  `json:"gender,omitempty"`
	Photo        *string  `json:"photo,omitempty"`
	Address      *Address `json:"address,omitempty"`
}

// Normalize 规范化补丁中的邮箱
func (p *UserPatch) Normalize() {
	if p.Email != nil {
		e := NormalizeEmail(*p.Email)
		p.Email = &e
	}
}

// Validate 校验补丁中提供的字段
func (p *UserPatch) Validate() error {
	if p.Email != nil {
		if err := validateEmail(*p.Email); err != nil {
			return err
		}
	}
	optional := []struct {
		field string
		value *string
	}{
		{"firstName", p.FirstName},
		{"lastName", p.LastName},
		{"phone", p.Phone},
		{"dob", p.DOB},
		{"gender", p.Gender},
	}
	for _, o := range optional {
		if o.value == nil {
			continue
		}
		if err := requireString(o.field, *o.value); err != nil {
			return err
		}
	}
	if p.Address != nil {
		if err := requireString("address.city", p.Address.City); err != nil {
			return err
		}
		if err := requireString("address.state", p.Address.State); err != nil {
			return err
		}
		if err := requireString("address.country", p.Address.Country); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty 补丁是否不含任何修改
func (p *UserPatch) IsEmpty() bool {
	return p.Email == nil && p.PasswordHash == nil && p.FirstName == nil &&
		p.LastName == nil && p.Phone == nil && p.DOB == nil && p.Gender == nil &&
		p.Photo == nil && p.Address == nil
}

// Apply 将补丁应用到 u（ID 与 RegDate 保持不变）
func (p *UserPatch) Apply(u *User) {
	setString(&u.Email, p.Email)
	setString(&u.PasswordHash, p.PasswordHash)
	setString(&u.FirstName, p.FirstName)
	setString(&u.LastName, p.LastName)
	setString(&u.Phone, p.Phone)
	setString(&u.DOB, p.DOB)
	setString(&u.Gender, p.Gender)
	setString(&u.Photo, p.Photo)
	if p.Address != nil {
		u.Address = *p.Address
	}
}

// Public 返回不含密码哈希的副本
func (u *User) Public() *User {
	cp := *u
	cp.PasswordHash = ""
	return &cp
}
