package handler

import "daily-attendance/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Employee   *EmployeeHandler
	Recipient  *RecipientHandler
	Attendance *AttendanceHandler
	Dispatch   *DispatchHandler
	Track      *TrackHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Employee:   NewEmployeeHandler(svc.Employee),
		Recipient:  NewRecipientHandler(svc.Recipient),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Dispatch:   NewDispatchHandler(svc.Dispatch),
		Track:      NewTrackHandler(svc.Track),
	}
}
