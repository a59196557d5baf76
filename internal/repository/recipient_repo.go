package repository

import (
	"context"

	"gorm.io/gorm"

	"daily-attendance/backend/internal/model"
)

// RecipientRepository 收件人数据访问接口
type RecipientRepository interface {
	Create(ctx context.Context, rec *model.Recipient) error
	GetByID(ctx context.Context, id int64) (*model.Recipient, error)
	GetByEmail(ctx context.Context, email string) (*model.Recipient, error)
	Update(ctx context.Context, rec *model.Recipient) error
	List(ctx context.Context, includeInactive bool, offset, limit int) ([]model.Recipient, int64, error)
	// ListActive 返回全部启用的收件人（派发任务用，不分页）
	ListActive(ctx context.Context) ([]model.Recipient, error)
}

// recipientRepo RecipientRepository 的 GORM 实现
type recipientRepo struct {
	db *gorm.DB
}

// NewRecipientRepo 创建 RecipientRepository 实例
func NewRecipientRepo(db *gorm.DB) RecipientRepository {
	return &recipientRepo{db: db}
}

func (r *recipientRepo) Create(ctx context.Context, rec *model.Recipient) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recipientRepo) GetByID(ctx context.Context, id int64) (*model.Recipient, error) {
	var rec model.Recipient
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recipientRepo) GetByEmail(ctx context.Context, email string) (*model.Recipient, error) {
	var rec model.Recipient
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recipientRepo) Update(ctx context.Context, rec *model.Recipient) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *recipientRepo) List(ctx context.Context, includeInactive bool, offset, limit int) ([]model.Recipient, int64, error) {
	var recs []model.Recipient
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Recipient{})
	if !includeInactive {
		db = db.Where("active = ?", true)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("id ASC").
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	return recs, total, nil
}

func (r *recipientRepo) ListActive(ctx context.Context) ([]model.Recipient, error) {
	var recs []model.Recipient
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}
