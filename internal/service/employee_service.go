package service

import (
	"context"
	"errors"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-attendance/backend/internal/dto"
	"daily-attendance/backend/internal/model"
	"daily-attendance/backend/internal/repository"
)

// ── 员工模块业务错误 ──

var (
	ErrInvalidWage = errors.New("日薪格式无效或为负数")
	ErrInvalidName = errors.New("姓名含有不允许的字符")
)

// EmployeeService 员工管理业务接口
type EmployeeService interface {
	Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.EmployeeResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error)
	// Deactivate 软删除：置 active=false，历史出勤记录保留
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error)
}

type employeeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(repo *repository.Repository, logger *zap.Logger) EmployeeService {
	return &employeeService{repo: repo, logger: logger}
}

// parseWage 解析并校验日薪字符串
func parseWage(s string) (decimal.Decimal, error) {
	wage, err := decimal.NewFromString(s)
	if err != nil || wage.IsNegative() {
		return decimal.Zero, ErrInvalidWage
	}
	return wage, nil
}

// validateEmployeeName 姓名字符集校验：各语言文字、空格、
// 点/间隔号（音译姓名分隔）和连字符，长度由 DTO binding 限制
func validateEmployeeName(name string) error {
	for _, r := range name {
		switch {
		case unicode.IsLetter(r):
		case r == ' ' || r == '.' || r == '·' || r == '-':
		default:
			return ErrInvalidName
		}
	}
	return nil
}

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	if err := validateEmployeeName(req.Name); err != nil {
		return nil, err
	}
	wage, err := parseWage(req.DailyWage)
	if err != nil {
		return nil, err
	}

	emp := &model.Employee{
		Name:      req.Name,
		DailyWage: wage,
		Active:    true,
	}
	if err := s.repo.Employee.Create(ctx, emp); err != nil {
		s.logger.Error("创建员工失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("员工已创建", zap.Int64("employee_id", emp.ID), zap.String("name", emp.Name))
	return toEmployeeResponse(emp), nil
}

func (s *employeeService) GetByID(ctx context.Context, id int64) (*dto.EmployeeResponse, error) {
	emp, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return toEmployeeResponse(emp), nil
}

func (s *employeeService) Update(ctx context.Context, id int64, req *dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	emp, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		if err := validateEmployeeName(*req.Name); err != nil {
			return nil, err
		}
		emp.Name = *req.Name
	}
	if req.DailyWage != nil {
		wage, err := parseWage(*req.DailyWage)
		if err != nil {
			return nil, err
		}
		// 调薪只影响之后的出勤记录，历史记录保留核销时的快照
		emp.DailyWage = wage
	}
	if req.Active != nil {
		emp.Active = *req.Active
	}

	if err := s.repo.Employee.Update(ctx, emp); err != nil {
		s.logger.Error("更新员工失败", zap.Int64("employee_id", id), zap.Error(err))
		return nil, err
	}
	return toEmployeeResponse(emp), nil
}

func (s *employeeService) Deactivate(ctx context.Context, id int64) error {
	emp, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		return err
	}
	if !emp.Active {
		return nil // 已离职，幂等
	}

	emp.Active = false
	if err := s.repo.Employee.Update(ctx, emp); err != nil {
		s.logger.Error("停用员工失败", zap.Int64("employee_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("员工已停用", zap.Int64("employee_id", id))
	return nil
}

func (s *employeeService) List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error) {
	emps, total, err := s.repo.Employee.List(ctx, req.IncludeInactive, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询员工列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.EmployeeResponse, 0, len(emps))
	for i := range emps {
		result = append(result, *toEmployeeResponse(&emps[i]))
	}
	return result, total, nil
}

func toEmployeeResponse(emp *model.Employee) *dto.EmployeeResponse {
	return &dto.EmployeeResponse{
		ID:        emp.ID,
		Name:      emp.Name,
		DailyWage: emp.DailyWage.StringFixed(2),
		Active:    emp.Active,
		CreatedAt: emp.CreatedAt.Format(time.RFC3339),
		UpdatedAt: emp.UpdatedAt.Format(time.RFC3339),
	}
}
