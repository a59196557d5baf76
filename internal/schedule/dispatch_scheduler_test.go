package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"daily-attendance/backend/config"
	"daily-attendance/backend/internal/dto"
	"daily-attendance/backend/internal/service"
	apperrors "daily-attendance/backend/pkg/errors"
)

// fakeDispatcher 按预设错误序列响应，记录调用次数
type fakeDispatcher struct {
	errs  []error
	calls int
}

func (f *fakeDispatcher) DispatchToday(_ context.Context) (*dto.DispatchResult, error) {
	var err error
	if f.calls < len(f.errs) {
		err = f.errs[f.calls]
	}
	f.calls++
	if err != nil {
		return nil, err
	}
	return &dto.DispatchResult{Sent: true}, nil
}

func newTestScheduler(t *testing.T, d *fakeDispatcher, attempts int) *Scheduler {
	t.Helper()
	s, err := NewScheduler(&config.DispatchConfig{
		Cron:          "0 18 * * *",
		Timezone:      "Asia/Shanghai",
		RetryAttempts: attempts,
		RetryDelay:    time.Millisecond,
	}, d, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler 应成功: %v", err)
	}
	return s
}

func TestScheduler_RunOnce_Success(t *testing.T) {
	d := &fakeDispatcher{}
	newTestScheduler(t, d, 3).RunOnce(context.Background())

	if d.calls != 1 {
		t.Errorf("成功时应只调用1次，实际=%d", d.calls)
	}
}

func TestScheduler_RunOnce_RetriesUntilSuccess(t *testing.T) {
	transient := apperrors.Retriable(errors.New("mail 503"))
	d := &fakeDispatcher{errs: []error{transient, transient, nil}}
	newTestScheduler(t, d, 3).RunOnce(context.Background())

	if d.calls != 3 {
		t.Errorf("期望重试至第3次成功，实际调用=%d", d.calls)
	}
}

func TestScheduler_RunOnce_ExhaustsAttempts(t *testing.T) {
	transient := apperrors.Retriable(errors.New("mail timeout"))
	d := &fakeDispatcher{errs: []error{transient, transient, transient, transient}}
	newTestScheduler(t, d, 3).RunOnce(context.Background())

	if d.calls != 3 {
		t.Errorf("重试上限3次，实际调用=%d", d.calls)
	}
}

func TestScheduler_RunOnce_PreconditionNoRetry(t *testing.T) {
	for _, err := range []error{
		service.ErrAlreadyDispatched,
		service.ErrNoActiveEmployees,
		service.ErrNoActiveRecipients,
		service.ErrMailNotConfigured,
	} {
		d := &fakeDispatcher{errs: []error{err, err, err}}
		newTestScheduler(t, d, 3).RunOnce(context.Background())
		if d.calls != 1 {
			t.Errorf("%v: 前置条件短路不应重试，实际调用=%d", err, d.calls)
		}
	}
}

func TestScheduler_RunOnce_NonRetriableNoRetry(t *testing.T) {
	d := &fakeDispatcher{errs: []error{errors.New("db down"), nil}}
	newTestScheduler(t, d, 3).RunOnce(context.Background())

	if d.calls != 1 {
		t.Errorf("不可重试错误不应重试，实际调用=%d", d.calls)
	}
}

func TestScheduler_RunOnce_CancelDuringDelay(t *testing.T) {
	transient := apperrors.Retriable(errors.New("mail 503"))
	d := &fakeDispatcher{errs: []error{transient, transient}}

	s, err := NewScheduler(&config.DispatchConfig{
		Cron:          "0 18 * * *",
		Timezone:      "Asia/Shanghai",
		RetryAttempts: 3,
		RetryDelay:    time.Hour, // 靠取消而非等待退出
	}, d, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler 应成功: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunOnce(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("取消后 RunOnce 应立即返回")
	}
	if d.calls != 1 {
		t.Errorf("取消后不应再尝试，实际调用=%d", d.calls)
	}
}

func TestScheduler_InvalidCron(t *testing.T) {
	if _, err := NewScheduler(&config.DispatchConfig{
		Cron:          "not a cron",
		Timezone:      "Asia/Shanghai",
		RetryAttempts: 3,
		RetryDelay:    time.Minute,
	}, &fakeDispatcher{}, zap.NewNop()); err == nil {
		t.Error("非法 cron 表达式应报错")
	}
}

func TestScheduler_InvalidTimezone(t *testing.T) {
	if _, err := NewScheduler(&config.DispatchConfig{
		Cron:          "0 18 * * *",
		Timezone:      "Mars/Olympus",
		RetryAttempts: 3,
		RetryDelay:    time.Minute,
	}, &fakeDispatcher{}, zap.NewNop()); err == nil {
		t.Error("非法时区应报错")
	}
}
