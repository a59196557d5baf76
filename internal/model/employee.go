package model

import "github.com/shopspring/decimal"

// Employee 员工名册表 — 对应 employees
type Employee struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"                     json:"id"`
	Name      string          `gorm:"type:varchar(50);not null"                    json:"name"`
	DailyWage decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"        json:"daily_wage"`
	Active    bool            `gorm:"not null;default:true"                        json:"active"`
	BaseModel
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }
