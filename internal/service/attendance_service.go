package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-attendance/backend/internal/dto"
	"daily-attendance/backend/internal/model"
	"daily-attendance/backend/internal/repository"
)

// ── 出勤记录模块业务错误 ──

var (
	ErrAttendanceNotFound = errors.New("出勤记录不存在")
	ErrInvalidDate        = errors.New("日期格式无效，应为 2006-01-02")
)

// AttendanceService 出勤记录查询与手工维护接口
type AttendanceService interface {
	List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, int64, error)
	// Create 管理员手工补录（邮件漏发、员工忘点链接等场景）
	Create(ctx context.Context, req *dto.CreateAttendanceRequest) (*dto.AttendanceResponse, error)
	// Delete 删除记录；若记录来自链接兑换，同步重置令牌使其可再次核销
	Delete(ctx context.Context, id int64) error
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

func (s *attendanceService) List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceResponse, int64, error) {
	filters := &repository.AttendanceListFilters{
		EmployeeID: req.EmployeeID,
	}
	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		filters.From = &from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		filters.To = &to
	}

	recs, total, err := s.repo.Attendance.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询出勤记录失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AttendanceResponse, 0, len(recs))
	for i := range recs {
		result = append(result, *toAttendanceResponse(&recs[i]))
	}
	return result, total, nil
}

func (s *attendanceService) Create(ctx context.Context, req *dto.CreateAttendanceRequest) (*dto.AttendanceResponse, error) {
	workDate, err := time.Parse("2006-01-02", req.WorkDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	emp, err := s.repo.Employee.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	// 同日重复补录不拦截：一人一天一条的约束只在链接核销路径内保证，
	// 手工补录场景（补发工资、加班单独记一笔）允许同日多条
	wage := emp.DailyWage
	if req.WageAmount != nil {
		wage, err = parseWage(*req.WageAmount)
		if err != nil {
			return nil, err
		}
	}

	rec := &model.AttendanceRecord{
		EmployeeID: emp.ID,
		WorkDate:   workDate,
		WageAmount: wage,
		RecordedAt: time.Now(),
		// 手工补录不关联令牌
	}
	if err := s.repo.Attendance.Create(ctx, rec); err != nil {
		s.logger.Error("补录出勤记录失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("出勤记录已补录",
		zap.Int64("employee_id", emp.ID),
		zap.String("work_date", req.WorkDate),
	)
	rec.Employee = emp
	return toAttendanceResponse(rec), nil
}

func (s *attendanceService) Delete(ctx context.Context, id int64) error {
	rec, err := s.repo.Attendance.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttendanceNotFound
		}
		return err
	}

	// 删除与令牌重置同事务：记录来自链接兑换时，删掉记录后
	// 令牌应恢复可用，否则员工无法重新核销当日出勤
	err = s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Attendance.Delete(ctx, rec.ID); err != nil {
			return err
		}
		if rec.SourceToken != nil {
			if err := txRepo.Dispatch.ResetByToken(ctx, *rec.SourceToken); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("删除出勤记录失败", zap.Int64("record_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("出勤记录已删除", zap.Int64("record_id", id))
	return nil
}

func toAttendanceResponse(rec *model.AttendanceRecord) *dto.AttendanceResponse {
	resp := &dto.AttendanceResponse{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		WorkDate:   rec.WorkDate.Format("2006-01-02"),
		WageAmount: rec.WageAmount.StringFixed(2),
		RecordedAt: rec.RecordedAt.Format(time.RFC3339),
		FromLink:   rec.SourceToken != nil,
	}
	if rec.Employee != nil {
		resp.EmployeeName = rec.Employee.Name
	}
	return resp
}
