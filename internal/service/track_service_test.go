package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"daily-attendance/backend/internal/model"
	"daily-attendance/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestTrackService() (TrackService, *repository.Repository, *RefCodec) {
	cfg := newTestConfig()
	repo := newTestRepository()
	svc := NewTrackService(cfg, repo, zap.NewNop())
	return svc, repo, NewRefCodec(cfg.Dispatch.LinkSecret)
}

// seedDispatch 插入一条今日派发记录，返回令牌
// "今日"按配置时区计算，与服务内部口径一致
func seedDispatch(repo *repository.Repository) string {
	token := uuid.New().String()
	loc, _ := time.LoadLocation(newTestConfig().Dispatch.Timezone)
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	_ = repo.Dispatch.Create(context.Background(), &model.DispatchRecord{
		DispatchDate: today,
		Token:        token,
	})
	return token
}

// ── Redeem 测试 ──

func TestTrackService_Redeem_Success(t *testing.T) {
	svc, repo, codec := setupTestTrackService()
	emp := addActiveEmployee(repo, "张三", "150.00")
	token := seedDispatch(repo)
	ref := codec.Encode(token, emp.ID)

	result, err := svc.Redeem(context.Background(), token, ref)
	if err != nil {
		t.Fatalf("Redeem 应成功: %v", err)
	}
	if result.EmployeeName != "张三" {
		t.Errorf("期望EmployeeName=张三，实际=%s", result.EmployeeName)
	}
	if result.WageAmount != "150.00" {
		t.Errorf("期望WageAmount=150.00，实际=%s", result.WageAmount)
	}
	if result.AlreadyRecorded {
		t.Error("首次核销不应标记为重复记录")
	}

	// 出勤记录落库，带令牌回链
	recs, total, _ := repo.Attendance.List(context.Background(), nil, 0, 10)
	if total != 1 {
		t.Fatalf("期望1条出勤记录，实际=%d", total)
	}
	if recs[0].EmployeeID != emp.ID {
		t.Errorf("期望EmployeeID=%d，实际=%d", emp.ID, recs[0].EmployeeID)
	}
	if recs[0].SourceToken == nil || *recs[0].SourceToken != token {
		t.Error("出勤记录应回链派发令牌")
	}

	// 令牌置为已用
	rec, _ := repo.Dispatch.GetByToken(context.Background(), token)
	if !rec.Used {
		t.Error("核销后令牌应为已用")
	}
	if rec.RedeemedBy == nil || *rec.RedeemedBy != emp.ID {
		t.Error("令牌应记录核销员工")
	}
}

func TestTrackService_Redeem_IdempotentSameEmployee(t *testing.T) {
	svc, repo, codec := setupTestTrackService()
	emp := addActiveEmployee(repo, "张三", "150.00")
	token := seedDispatch(repo)
	ref := codec.Encode(token, emp.ID)

	if _, err := svc.Redeem(context.Background(), token, ref); err != nil {
		t.Fatalf("首次核销应成功: %v", err)
	}

	// 同员工重复点击：成功但不产生新记录
	result, err := svc.Redeem(context.Background(), token, ref)
	if err != nil {
		t.Fatalf("重复核销应幂等成功: %v", err)
	}
	if !result.AlreadyRecorded {
		t.Error("期望AlreadyRecorded=true")
	}
	if result.WageAmount != "150.00" {
		t.Errorf("幂等返回应带原记录工资，实际=%s", result.WageAmount)
	}

	_, total, _ := repo.Attendance.List(context.Background(), nil, 0, 10)
	if total != 1 {
		t.Errorf("重复核销不应新增出勤记录，实际=%d", total)
	}
}

func TestTrackService_Redeem_MultipleEmployeesSameToken(t *testing.T) {
	svc, repo, codec := setupTestTrackService()
	zhang := addActiveEmployee(repo, "张三", "150.00")
	li := addActiveEmployee(repo, "李四", "200.00")
	token := seedDispatch(repo)

	if _, err := svc.Redeem(context.Background(), token, codec.Encode(token, zhang.ID)); err != nil {
		t.Fatalf("首位员工核销应成功: %v", err)
	}

	// 引用按员工签发，同一令牌下第二位员工照常核销
	result, err := svc.Redeem(context.Background(), token, codec.Encode(token, li.ID))
	if err != nil {
		t.Fatalf("第二位员工核销应成功: %v", err)
	}
	if result.EmployeeName != "李四" {
		t.Errorf("期望EmployeeName=李四，实际=%s", result.EmployeeName)
	}
	if result.AlreadyRecorded {
		t.Error("第二位员工首次核销不应标记为重复记录")
	}

	// 各记各的出勤，互不挤占
	_, total, _ := repo.Attendance.List(context.Background(), nil, 0, 10)
	if total != 2 {
		t.Errorf("期望2条出勤记录，实际=%d", total)
	}

	// redeemed_by 只反映最后一次提交的核销者
	rec, _ := repo.Dispatch.GetByToken(context.Background(), token)
	if rec.RedeemedBy == nil || *rec.RedeemedBy != li.ID {
		t.Errorf("期望redeemed_by=%d（最后核销者），实际=%v", li.ID, rec.RedeemedBy)
	}
}

func TestTrackService_Redeem_UnknownToken(t *testing.T) {
	svc, repo, codec := setupTestTrackService()
	emp := addActiveEmployee(repo, "张三", "150.00")

	token := uuid.New().String() // 从未派发过
	_, err := svc.Redeem(context.Background(), token, codec.Encode(token, emp.ID))
	if !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("期望ErrLinkNotFound，实际=%v", err)
	}
}

func TestTrackService_Redeem_MalformedToken(t *testing.T) {
	svc, _, _ := setupTestTrackService()

	_, err := svc.Redeem(context.Background(), "not-a-uuid", "1")
	if !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("非法令牌格式应返回ErrLinkNotFound，实际=%v", err)
	}
}

func TestTrackService_Redeem_TamperedRef(t *testing.T) {
	svc, repo, codec := setupTestTrackService()
	addActiveEmployee(repo, "张三", "150.00")
	li := addActiveEmployee(repo, "李四", "200.00")
	token := seedDispatch(repo)

	// 签名绑定令牌：另一令牌下生成的引用在本令牌下按篡改拒绝
	otherToken := uuid.New().String()
	refForOther := codec.Encode(otherToken, li.ID)
	_, err := svc.Redeem(context.Background(), token, refForOther)
	if !errors.Is(err, ErrInvalidRef) {
		t.Errorf("跨令牌引用应返回ErrInvalidRef，实际=%v", err)
	}

	_, total, _ := repo.Attendance.List(context.Background(), nil, 0, 10)
	if total != 0 {
		t.Errorf("被拒绝的引用不应产生出勤记录，实际=%d", total)
	}
}

func TestTrackService_Redeem_InactiveEmployee(t *testing.T) {
	svc, repo, codec := setupTestTrackService()
	emp := addActiveEmployee(repo, "张三", "150.00")
	token := seedDispatch(repo)
	ref := codec.Encode(token, emp.ID)

	// 派发后离职
	emp.Active = false
	_ = repo.Employee.Update(context.Background(), emp)

	_, err := svc.Redeem(context.Background(), token, ref)
	if !errors.Is(err, ErrEmployeeInactive) {
		t.Errorf("期望ErrEmployeeInactive，实际=%v", err)
	}
}

func TestTrackService_Redeem_EmployeeNotFound(t *testing.T) {
	svc, repo, codec := setupTestTrackService()
	token := seedDispatch(repo)
	ref := codec.Encode(token, 999)

	_, err := svc.Redeem(context.Background(), token, ref)
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("期望ErrEmployeeNotFound，实际=%v", err)
	}
}

func TestTrackService_Redeem_WageSnapshot(t *testing.T) {
	svc, repo, codec := setupTestTrackService()
	emp := addActiveEmployee(repo, "张三", "150.00")
	token := seedDispatch(repo)
	ref := codec.Encode(token, emp.ID)

	result, err := svc.Redeem(context.Background(), token, ref)
	if err != nil {
		t.Fatalf("Redeem 应成功: %v", err)
	}
	if result.WageAmount != "150.00" {
		t.Errorf("期望工资快照150.00，实际=%s", result.WageAmount)
	}

	// 核销后调薪不影响已记录的快照
	emp.DailyWage = emp.DailyWage.Add(emp.DailyWage)
	_ = repo.Employee.Update(context.Background(), emp)
	recs, _, _ := repo.Attendance.List(context.Background(), &repository.AttendanceListFilters{EmployeeID: emp.ID}, 0, 10)
	if len(recs) != 1 || recs[0].WageAmount.StringFixed(2) != "150.00" {
		t.Error("出勤记录应保留核销时刻的工资快照")
	}
}

func TestTrackService_Redeem_LegacyNumericRef(t *testing.T) {
	svc, repo, _ := setupTestTrackService()
	emp := addActiveEmployee(repo, "张三", "150.00")
	token := seedDispatch(repo)

	// 历史纯数字引用仍被接受
	result, err := svc.Redeem(context.Background(), token, "1")
	if err != nil {
		t.Fatalf("纯数字引用应兼容: %v", err)
	}
	if result.EmployeeName != emp.Name {
		t.Errorf("期望EmployeeName=%s，实际=%s", emp.Name, result.EmployeeName)
	}
}
