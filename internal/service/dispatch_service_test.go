package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"daily-attendance/backend/config"
	"daily-attendance/backend/internal/model"
	"daily-attendance/backend/internal/repository"
	apperrors "daily-attendance/backend/pkg/errors"
	"daily-attendance/backend/pkg/mailer"
)

// ── 测试辅助 ──

func newTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:    8080,
			BaseURL: "http://localhost:8080",
		},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-0123456789",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
		},
		Mail: config.MailConfig{
			APIKey: "test-api-key",
			From:   "attendance@example.com",
		},
		Dispatch: config.DispatchConfig{
			Cron:          "0 18 * * *",
			Timezone:      "Asia/Shanghai",
			LinkSecret:    "link-secret-0123456789",
			Subject:       "今日出勤确认",
			RetryAttempts: 3,
			RetryDelay:    5 * time.Minute,
		},
	}
}

func setupTestDispatchService(cfg *config.Config) (DispatchService, *repository.Repository, *mailer.MockClient) {
	repo := newTestRepository()
	mock := mailer.NewMockClient()
	svc := NewDispatchService(cfg, repo, mock, zap.NewNop())
	return svc, repo, mock
}

func addActiveEmployee(repo *repository.Repository, name string, wage string) *model.Employee {
	w, _ := decimal.NewFromString(wage)
	emp := &model.Employee{Name: name, DailyWage: w, Active: true}
	_ = repo.Employee.Create(context.Background(), emp)
	return emp
}

func addActiveRecipient(repo *repository.Repository, email string) *model.Recipient {
	rec := &model.Recipient{Email: email, Active: true}
	_ = repo.Recipient.Create(context.Background(), rec)
	return rec
}

// ── DispatchToday 测试 ──

func TestDispatchService_DispatchToday_Success(t *testing.T) {
	svc, repo, mock := setupTestDispatchService(newTestConfig())
	addActiveEmployee(repo, "张三", "150.00")
	addActiveEmployee(repo, "李四", "200.00")
	addActiveRecipient(repo, "boss@example.com")

	result, err := svc.DispatchToday(context.Background())
	if err != nil {
		t.Fatalf("DispatchToday 应成功: %v", err)
	}
	if !result.Sent {
		t.Error("期望Sent=true")
	}
	if mock.SentCount() != 1 {
		t.Fatalf("期望发送1封邮件，实际=%d", mock.SentCount())
	}

	msg := mock.Sent[0]
	if len(msg.To) != 1 || msg.To[0] != "boss@example.com" {
		t.Errorf("收件人不正确: %v", msg.To)
	}
	if !strings.Contains(msg.HTML, "/track/") {
		t.Error("邮件正文应包含核销链接")
	}
	if !strings.Contains(msg.HTML, "张三") || !strings.Contains(msg.HTML, "李四") {
		t.Error("邮件正文应包含所有在职员工")
	}
}

func TestDispatchService_DispatchToday_RecordPersisted(t *testing.T) {
	svc, repo, _ := setupTestDispatchService(newTestConfig())
	addActiveEmployee(repo, "张三", "150.00")
	addActiveRecipient(repo, "boss@example.com")

	if _, err := svc.DispatchToday(context.Background()); err != nil {
		t.Fatalf("DispatchToday 应成功: %v", err)
	}

	recs, total, err := repo.Dispatch.List(context.Background(), 0, 10)
	if err != nil || total != 1 {
		t.Fatalf("期望1条派发记录，实际=%d, err=%v", total, err)
	}
	if recs[0].Used {
		t.Error("新派发记录不应处于已用状态")
	}
	if recs[0].Token == "" {
		t.Error("派发记录应带令牌")
	}
}

func TestDispatchService_DispatchToday_AlreadyDispatched(t *testing.T) {
	svc, repo, mock := setupTestDispatchService(newTestConfig())
	addActiveEmployee(repo, "张三", "150.00")
	addActiveRecipient(repo, "boss@example.com")

	if _, err := svc.DispatchToday(context.Background()); err != nil {
		t.Fatalf("首次派发应成功: %v", err)
	}

	_, err := svc.DispatchToday(context.Background())
	if !errors.Is(err, ErrAlreadyDispatched) {
		t.Errorf("期望ErrAlreadyDispatched，实际=%v", err)
	}
	if apperrors.IsRetriable(err) {
		t.Error("已发送错误不应可重试")
	}
	if mock.SentCount() != 1 {
		t.Errorf("重复派发不应再发邮件，实际发送=%d", mock.SentCount())
	}
}

func TestDispatchService_DispatchToday_NoActiveEmployees(t *testing.T) {
	svc, repo, mock := setupTestDispatchService(newTestConfig())
	// 只有离职员工
	emp := addActiveEmployee(repo, "张三", "150.00")
	emp.Active = false
	_ = repo.Employee.Update(context.Background(), emp)
	addActiveRecipient(repo, "boss@example.com")

	_, err := svc.DispatchToday(context.Background())
	if !errors.Is(err, ErrNoActiveEmployees) {
		t.Errorf("期望ErrNoActiveEmployees，实际=%v", err)
	}
	if mock.SentCount() != 0 {
		t.Error("无在职员工时不应发送邮件")
	}
}

func TestDispatchService_DispatchToday_NoActiveRecipients(t *testing.T) {
	svc, repo, _ := setupTestDispatchService(newTestConfig())
	addActiveEmployee(repo, "张三", "150.00")

	_, err := svc.DispatchToday(context.Background())
	if !errors.Is(err, ErrNoActiveRecipients) {
		t.Errorf("期望ErrNoActiveRecipients，实际=%v", err)
	}
}

func TestDispatchService_DispatchToday_MailNotConfigured(t *testing.T) {
	cfg := newTestConfig()
	cfg.Mail.APIKey = ""
	repo := newTestRepository()
	svc := NewDispatchService(cfg, repo, nil, zap.NewNop())
	addActiveEmployee(repo, "张三", "150.00")
	addActiveRecipient(repo, "boss@example.com")

	_, err := svc.DispatchToday(context.Background())
	if !errors.Is(err, ErrMailNotConfigured) {
		t.Errorf("期望ErrMailNotConfigured，实际=%v", err)
	}
	if apperrors.IsRetriable(err) {
		t.Error("未配置邮件不应可重试")
	}
}

func TestDispatchService_DispatchToday_SendFailureRetriable(t *testing.T) {
	svc, repo, mock := setupTestDispatchService(newTestConfig())
	addActiveEmployee(repo, "张三", "150.00")
	addActiveRecipient(repo, "boss@example.com")
	mock.FailAlways = true

	_, err := svc.DispatchToday(context.Background())
	if err == nil {
		t.Fatal("发送失败时应返回错误")
	}
	if !apperrors.IsRetriable(err) {
		t.Errorf("发送失败应可重试，实际=%v", err)
	}
}

func TestDispatchService_DispatchToday_SendFailureThenRetrySucceeds(t *testing.T) {
	svc, repo, mock := setupTestDispatchService(newTestConfig())
	addActiveEmployee(repo, "张三", "150.00")
	addActiveRecipient(repo, "boss@example.com")

	// 首次失败（mock 事务不回滚，手工清掉残留记录模拟回滚效果）
	mock.FailNext = true
	if _, err := svc.DispatchToday(context.Background()); err == nil {
		t.Fatal("首次发送应失败")
	}
	dispatchRepo := repo.Dispatch.(*mockDispatchRepo)
	dispatchRepo.records = make(map[int64]*model.DispatchRecord)

	// 重试应完整成功
	result, err := svc.DispatchToday(context.Background())
	if err != nil {
		t.Fatalf("重试应成功: %v", err)
	}
	if !result.Sent {
		t.Error("期望Sent=true")
	}
}

func TestDispatchService_DispatchToday_ConcurrentConflict(t *testing.T) {
	svc, repo, mock := setupTestDispatchService(newTestConfig())
	addActiveEmployee(repo, "张三", "150.00")
	addActiveRecipient(repo, "boss@example.com")

	// GetByDate 查不到但 Create 撞唯一约束：另一实例刚刚插入
	repo.Dispatch.(*mockDispatchRepo).createConflict = true

	_, err := svc.DispatchToday(context.Background())
	if !errors.Is(err, ErrAlreadyDispatched) {
		t.Errorf("并发冲突应按已发送处理，实际=%v", err)
	}
	if mock.SentCount() != 0 {
		t.Error("冲突时不应发送邮件")
	}
}

func TestDispatchService_DispatchToday_LinksPerEmployee(t *testing.T) {
	svc, repo, mock := setupTestDispatchService(newTestConfig())
	addActiveEmployee(repo, "张三", "150.00")
	addActiveEmployee(repo, "李四", "200.00")
	addActiveEmployee(repo, "王五", "180.00")
	addActiveRecipient(repo, "boss@example.com")

	if _, err := svc.DispatchToday(context.Background()); err != nil {
		t.Fatalf("DispatchToday 应成功: %v", err)
	}

	// 每个员工一个互不相同的链接
	count := strings.Count(mock.Sent[0].Text, "/track/")
	if count != 3 {
		t.Errorf("期望3个核销链接，实际=%d", count)
	}
}
