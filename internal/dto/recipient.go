package dto

// ── 收件人模块 DTO ──

// CreateRecipientRequest 创建收件人请求
type CreateRecipientRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

// UpdateRecipientRequest 更新收件人请求（部分字段）
type UpdateRecipientRequest struct {
	Email  *string `json:"email" binding:"omitempty,email,max=254"`
	Active *bool   `json:"active"`
}

// RecipientListRequest 收件人列表请求
type RecipientListRequest struct {
	PaginationRequest
	IncludeInactive bool `form:"include_inactive"`
}

// RecipientResponse 收件人信息响应
type RecipientResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}
