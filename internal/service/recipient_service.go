package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-attendance/backend/internal/dto"
	"daily-attendance/backend/internal/model"
	"daily-attendance/backend/internal/repository"
)

// ── 收件人模块业务错误 ──

var (
	ErrRecipientNotFound = errors.New("收件人不存在")
	ErrEmailExists       = errors.New("邮箱已存在")
)

// RecipientService 收件人管理业务接口
type RecipientService interface {
	Create(ctx context.Context, req *dto.CreateRecipientRequest) (*dto.RecipientResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateRecipientRequest) (*dto.RecipientResponse, error)
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, req *dto.RecipientListRequest) ([]dto.RecipientResponse, int64, error)
}

type recipientService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRecipientService 创建 RecipientService 实例
func NewRecipientService(repo *repository.Repository, logger *zap.Logger) RecipientService {
	return &recipientService{repo: repo, logger: logger}
}

// normalizeEmail 邮箱统一小写去空白后入库，保证唯一约束按规范化形式生效
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *recipientService) Create(ctx context.Context, req *dto.CreateRecipientRequest) (*dto.RecipientResponse, error) {
	email := normalizeEmail(req.Email)

	rec := &model.Recipient{
		Email:  email,
		Active: true,
	}
	if err := s.repo.Recipient.Create(ctx, rec); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("创建收件人失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("收件人已创建", zap.Int64("recipient_id", rec.ID))
	return toRecipientResponse(rec), nil
}

func (s *recipientService) Update(ctx context.Context, id int64, req *dto.UpdateRecipientRequest) (*dto.RecipientResponse, error) {
	rec, err := s.repo.Recipient.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	if req.Email != nil {
		rec.Email = normalizeEmail(*req.Email)
	}
	if req.Active != nil {
		rec.Active = *req.Active
	}

	if err := s.repo.Recipient.Update(ctx, rec); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("更新收件人失败", zap.Int64("recipient_id", id), zap.Error(err))
		return nil, err
	}
	return toRecipientResponse(rec), nil
}

func (s *recipientService) Deactivate(ctx context.Context, id int64) error {
	rec, err := s.repo.Recipient.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipientNotFound
		}
		return err
	}
	if !rec.Active {
		return nil
	}

	rec.Active = false
	if err := s.repo.Recipient.Update(ctx, rec); err != nil {
		s.logger.Error("停用收件人失败", zap.Int64("recipient_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *recipientService) List(ctx context.Context, req *dto.RecipientListRequest) ([]dto.RecipientResponse, int64, error) {
	recs, total, err := s.repo.Recipient.List(ctx, req.IncludeInactive, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询收件人列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.RecipientResponse, 0, len(recs))
	for i := range recs {
		result = append(result, *toRecipientResponse(&recs[i]))
	}
	return result, total, nil
}

func toRecipientResponse(rec *model.Recipient) *dto.RecipientResponse {
	return &dto.RecipientResponse{
		ID:        rec.ID,
		Email:     rec.Email,
		Active:    rec.Active,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
	}
}
