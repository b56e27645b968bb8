package model

import "time"

// Role 使用者角色；核心 workflow 只消費 {userID, role}，授權由外層 middleware 執行
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// AtLeast 角色階層比較：customer < staff < manager < admin
func (r Role) AtLeast(min Role) bool {
	rank := map[Role]int{
		RoleCustomer: 0,
		RoleStaff:    1,
		RoleManager:  2,
		RoleAdmin:    3,
	}
	return rank[r] >= rank[min]
}

type User struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Identity 認證後的請求身分
type Identity struct {
	UserID int  `json:"user_id"`
	Role   Role `json:"role"`
}
