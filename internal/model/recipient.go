package model

// Recipient 通知收件人表 — 对应 recipients
// Email 存储前统一转小写，唯一约束按规范化后的值生效
type Recipient struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"                json:"id"`
	Email  string `gorm:"type:varchar(254);not null;uniqueIndex"  json:"email"`
	Active bool   `gorm:"not null;default:true"                   json:"active"`
	BaseModel
}

// TableName 指定表名
func (Recipient) TableName() string { return "recipients" }
