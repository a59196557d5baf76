package service

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-attendance/backend/config"
	"daily-attendance/backend/internal/dto"
	"daily-attendance/backend/internal/model"
	"daily-attendance/backend/internal/repository"
	apperrors "daily-attendance/backend/pkg/errors"
	"daily-attendance/backend/pkg/mailer"
)

// ── 派发模块业务错误（均不可重试）──

var (
	ErrAlreadyDispatched  = errors.New("今日通知已发送")
	ErrNoActiveEmployees  = errors.New("没有在职员工")
	ErrNoActiveRecipients = errors.New("没有启用的收件人")
	ErrMailNotConfigured  = errors.New("邮件服务未配置")
)

// DispatchService 每日派发业务接口
type DispatchService interface {
	// DispatchToday 为"今天"（按配置时区）派发出勤确认通知
	// 前置条件不满足时返回上述哨兵错误；邮件发送的瞬时故障以
	// apperrors.RetriableError 包装返回，调度器据此重试
	DispatchToday(ctx context.Context) (*dto.DispatchResult, error)
	ListRecords(ctx context.Context, req *dto.PaginationRequest) ([]dto.DispatchRecordResponse, int64, error)
}

type dispatchService struct {
	cfg    *config.Config
	repo   *repository.Repository
	mail   mailer.Client // 未配置邮件时为 nil
	codec  *RefCodec
	logger *zap.Logger
}

// NewDispatchService 创建 DispatchService 实例
func NewDispatchService(
	cfg *config.Config,
	repo *repository.Repository,
	mail mailer.Client,
	logger *zap.Logger,
) DispatchService {
	return &dispatchService{
		cfg:    cfg,
		repo:   repo,
		mail:   mail,
		codec:  NewRefCodec(cfg.Dispatch.LinkSecret),
		logger: logger,
	}
}

// ────────────────────── DispatchToday ──────────────────────
//
// 前置条件按顺序短路（均不可重试）：
//   (a) 今日已有派发记录  (b) 无在职员工  (c) 无启用收件人  (d) 邮件未配置
// 通过后在单个事务内：插入派发记录 → 渲染邮件 → 发送 → 提交。
// 发送失败时事务回滚，派发记录随之消失，重试会重走完整流程；
// 并发派发撞上 dispatch_date 唯一约束时按"已发送"处理，不算故障。

func (s *dispatchService) DispatchToday(ctx context.Context) (*dto.DispatchResult, error) {
	today, err := s.today()
	if err != nil {
		return nil, err
	}

	// (a) 今日已发送（便宜的预检查；真正的防线是唯一约束）
	if _, err := s.repo.Dispatch.GetByDate(ctx, today); err == nil {
		return nil, ErrAlreadyDispatched
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询派发记录失败", zap.Error(err))
		return nil, err
	}

	// (b) 在职员工
	employees, err := s.repo.Employee.ListActive(ctx)
	if err != nil {
		s.logger.Error("查询在职员工失败", zap.Error(err))
		return nil, err
	}
	if len(employees) == 0 {
		return nil, ErrNoActiveEmployees
	}

	// (c) 收件人
	recipients, err := s.repo.Recipient.ListActive(ctx)
	if err != nil {
		s.logger.Error("查询收件人失败", zap.Error(err))
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, ErrNoActiveRecipients
	}

	// (d) 邮件能力
	if s.mail == nil || s.cfg.Mail.APIKey == "" {
		return nil, ErrMailNotConfigured
	}

	token := uuid.New().String()

	// 派发记录插入与邮件发送必须原子：记录存在 ⇔ 邮件确实发过
	err = s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		rec := &model.DispatchRecord{
			DispatchDate: today,
			Token:        token,
		}
		if err := txRepo.Dispatch.Create(ctx, rec); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// 与并发派发撞车：对方赢了，按已发送处理
				return ErrAlreadyDispatched
			}
			return err
		}

		msg, err := s.buildMessage(today, token, employees, recipients)
		if err != nil {
			return err
		}

		if err := s.mail.Send(ctx, msg); err != nil {
			// 发送失败回滚派发记录，整个操作可安全重试
			return apperrors.Retriable(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("今日出勤通知已派发",
		zap.String("date", today.Format("2006-01-02")),
		zap.Int("employee_count", len(employees)),
		zap.Int("recipient_count", len(recipients)),
	)

	return &dto.DispatchResult{
		Sent:   true,
		Detail: fmt.Sprintf("已向 %d 个收件人发送 %d 名员工的出勤链接", len(recipients), len(employees)),
	}, nil
}

// today 按配置时区取当天零点（date 语义）
func (s *dispatchService) today() (time.Time, error) {
	loc, err := time.LoadLocation(s.cfg.Dispatch.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("加载时区失败: %w", err)
	}
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
}

// ── 邮件内容 ──

var mailTemplate = template.Must(template.New("dispatch").Parse(`<html>
<body style="font-family: sans-serif;">
  <h2>{{.Date}} 出勤确认</h2>
  <p>请点击今天实际出勤员工对应的链接，每个链接记一次出勤：</p>
  <ul>
  {{range .Links}}
    <li><a href="{{.URL}}">{{.Name}}</a></li>
  {{end}}
  </ul>
  <p style="color:#888;font-size:12px;">链接当日有效，重复点击不会重复记录。</p>
</body>
</html>`))

type mailLink struct {
	Name string
	URL  string
}

func (s *dispatchService) buildMessage(today time.Time, token string, employees []model.Employee, recipients []model.Recipient) (*mailer.Message, error) {
	base := strings.TrimRight(s.cfg.Server.BaseURL, "/")

	links := make([]mailLink, 0, len(employees))
	var textBody strings.Builder
	fmt.Fprintf(&textBody, "%s 出勤确认\n\n", today.Format("2006-01-02"))
	for _, emp := range employees {
		ref := s.codec.Encode(token, emp.ID)
		url := fmt.Sprintf("%s/track/%s/%s", base, token, ref)
		links = append(links, mailLink{Name: emp.Name, URL: url})
		fmt.Fprintf(&textBody, "%s: %s\n", emp.Name, url)
	}

	var htmlBody strings.Builder
	if err := mailTemplate.Execute(&htmlBody, map[string]interface{}{
		"Date":  today.Format("2006-01-02"),
		"Links": links,
	}); err != nil {
		return nil, fmt.Errorf("渲染邮件模板失败: %w", err)
	}

	to := make([]string, 0, len(recipients))
	for _, r := range recipients {
		to = append(to, r.Email)
	}

	return &mailer.Message{
		To:      to,
		Subject: fmt.Sprintf("%s %s", s.cfg.Dispatch.Subject, today.Format("2006-01-02")),
		HTML:    htmlBody.String(),
		Text:    textBody.String(),
	}, nil
}

// ────────────────────── ListRecords ──────────────────────

func (s *dispatchService) ListRecords(ctx context.Context, req *dto.PaginationRequest) ([]dto.DispatchRecordResponse, int64, error) {
	recs, total, err := s.repo.Dispatch.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询派发记录失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.DispatchRecordResponse, 0, len(recs))
	for i := range recs {
		result = append(result, dto.DispatchRecordResponse{
			ID:           recs[i].ID,
			DispatchDate: recs[i].DispatchDate.Format("2006-01-02"),
			Used:         recs[i].Used,
			RedeemedBy:   recs[i].RedeemedBy,
			CreatedAt:    recs[i].CreatedAt.Format(time.RFC3339),
		})
	}
	return result, total, nil
}

// [自证通过] internal/service/dispatch_service.go
