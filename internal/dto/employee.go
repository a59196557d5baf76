package dto

// ── 员工模块 DTO ──

// CreateEmployeeRequest 创建员工请求
// DailyWage 以字符串传输（如 "150.00"），服务层解析为 decimal 并校验非负
type CreateEmployeeRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=50"`
	DailyWage string `json:"daily_wage" binding:"required"`
}

// UpdateEmployeeRequest 更新员工请求（部分字段）
type UpdateEmployeeRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=2,max=50"`
	DailyWage *string `json:"daily_wage"`
	Active    *bool   `json:"active"`
}

// EmployeeListRequest 员工列表请求
type EmployeeListRequest struct {
	PaginationRequest
	IncludeInactive bool `form:"include_inactive"`
}

// EmployeeResponse 员工信息响应
type EmployeeResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	DailyWage string `json:"daily_wage"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
