package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"daily-attendance/backend/internal/model"
)

// AttendanceListFilters 出勤记录列表过滤条件
type AttendanceListFilters struct {
	EmployeeID int64
	From       *time.Time
	To         *time.Time
}

// AttendanceRepository 出勤记录数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, rec *model.AttendanceRecord) error
	GetByID(ctx context.Context, id int64) (*model.AttendanceRecord, error)
	// GetByEmployeeAndDate 查询某员工某日的出勤记录（兑换路径的幂等检查）
	GetByEmployeeAndDate(ctx context.Context, employeeID int64, workDate time.Time) (*model.AttendanceRecord, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filters *AttendanceListFilters, offset, limit int) ([]model.AttendanceRecord, int64, error)
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, rec *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *attendanceRepo) GetByID(ctx context.Context, id int64) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID int64, workDate time.Time) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND work_date = ?", employeeID, workDate.Format("2006-01-02")).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Delete(&model.AttendanceRecord{}, id).Error
}

func (r *attendanceRepo) List(ctx context.Context, filters *AttendanceListFilters, offset, limit int) ([]model.AttendanceRecord, int64, error) {
	var recs []model.AttendanceRecord
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AttendanceRecord{})
	if filters != nil {
		if filters.EmployeeID > 0 {
			db = db.Where("employee_id = ?", filters.EmployeeID)
		}
		if filters.From != nil {
			db = db.Where("work_date >= ?", filters.From.Format("2006-01-02"))
		}
		if filters.To != nil {
			db = db.Where("work_date <= ?", filters.To.Format("2006-01-02"))
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Employee").
		Offset(offset).Limit(limit).
		Order("work_date DESC, id DESC").
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	return recs, total, nil
}
