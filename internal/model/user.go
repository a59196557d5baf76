package model

// User 管理员账号表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"username"`
	PasswordHash string `gorm:"type:varchar(100);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'admin'"      json:"role"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
