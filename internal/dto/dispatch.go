package dto

// ── 派发模块 DTO ──

// DispatchResult 派发结果
// 前置条件短路（已发送/无员工/无收件人/未配置邮件）返回 Sent=false 加原因，
// 不作为错误上抛；真正的故障走 error 通道
type DispatchResult struct {
	Sent   bool   `json:"sent"`
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// DispatchRecordResponse 派发记录响应（审计视图）
type DispatchRecordResponse struct {
	ID           int64  `json:"id"`
	DispatchDate string `json:"dispatch_date"`
	Used         bool   `json:"used"`
	RedeemedBy   *int64 `json:"redeemed_by,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// ── 兑换模块 DTO ──

// TrackResult 链接兑换结果
// AlreadyRecorded=true 表示重复点击的幂等成功，未写入新记录
type TrackResult struct {
	EmployeeName    string `json:"employee_name"`
	WorkDate        string `json:"work_date"`
	WageAmount      string `json:"wage_amount"`
	AlreadyRecorded bool   `json:"already_recorded"`
}
