package service

import (
	"go.uber.org/zap"

	"daily-attendance/backend/config"
	"daily-attendance/backend/internal/repository"
	"daily-attendance/backend/pkg/jwt"
	"daily-attendance/backend/pkg/mailer"
	"daily-attendance/backend/pkg/redis"
)

// Service 业务层聚合
type Service struct {
	Auth       AuthService
	Employee   EmployeeService
	Recipient  RecipientService
	Attendance AttendanceService
	Dispatch   DispatchService
	Track      TrackService
}

// NewService 创建业务层聚合实例
// rdb 和 mail 允许为 nil：Redis 降级后黑名单/限流失效，
// 邮件未配置时派发任务短路返回 ErrMailNotConfigured
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	mail mailer.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Employee:   NewEmployeeService(repo, logger),
		Recipient:  NewRecipientService(repo, logger),
		Attendance: NewAttendanceService(repo, logger),
		Dispatch:   NewDispatchService(cfg, repo, mail, logger),
		Track:      NewTrackService(cfg, repo, logger),
	}
}
