package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"daily-attendance/backend/internal/model"
	"daily-attendance/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[int64]*model.Employee
	nextID    int64
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[int64]*model.Employee), nextID: 1}
}

func (m *mockEmployeeRepo) Create(_ context.Context, emp *model.Employee) error {
	if emp.ID == 0 {
		emp.ID = m.nextID
		m.nextID++
	}
	emp.CreatedAt = time.Now()
	emp.UpdatedAt = time.Now()
	m.employees[emp.ID] = emp
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id int64) (*model.Employee, error) {
	if e, ok := m.employees[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) Update(_ context.Context, emp *model.Employee) error {
	emp.UpdatedAt = time.Now()
	m.employees[emp.ID] = emp
	return nil
}

func (m *mockEmployeeRepo) List(_ context.Context, includeInactive bool, _, _ int) ([]model.Employee, int64, error) {
	var result []model.Employee
	for _, e := range m.employees {
		if includeInactive || e.Active {
			result = append(result, *e)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockEmployeeRepo) ListActive(_ context.Context) ([]model.Employee, error) {
	var result []model.Employee
	for _, e := range m.employees {
		if e.Active {
			result = append(result, *e)
		}
	}
	return result, nil
}

// ── Mock RecipientRepository ──

type mockRecipientRepo struct {
	recipients map[int64]*model.Recipient
	nextID     int64
}

func newMockRecipientRepo() *mockRecipientRepo {
	return &mockRecipientRepo{recipients: make(map[int64]*model.Recipient), nextID: 1}
}

func (m *mockRecipientRepo) Create(_ context.Context, rec *model.Recipient) error {
	for _, r := range m.recipients {
		if r.Email == rec.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if rec.ID == 0 {
		rec.ID = m.nextID
		m.nextID++
	}
	rec.CreatedAt = time.Now()
	m.recipients[rec.ID] = rec
	return nil
}

func (m *mockRecipientRepo) GetByID(_ context.Context, id int64) (*model.Recipient, error) {
	if r, ok := m.recipients[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRecipientRepo) GetByEmail(_ context.Context, email string) (*model.Recipient, error) {
	for _, r := range m.recipients {
		if r.Email == email {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRecipientRepo) Update(_ context.Context, rec *model.Recipient) error {
	for _, r := range m.recipients {
		if r.ID != rec.ID && r.Email == rec.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.recipients[rec.ID] = rec
	return nil
}

func (m *mockRecipientRepo) List(_ context.Context, includeInactive bool, _, _ int) ([]model.Recipient, int64, error) {
	var result []model.Recipient
	for _, r := range m.recipients {
		if includeInactive || r.Active {
			result = append(result, *r)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockRecipientRepo) ListActive(_ context.Context) ([]model.Recipient, error) {
	var result []model.Recipient
	for _, r := range m.recipients {
		if r.Active {
			result = append(result, *r)
		}
	}
	return result, nil
}

// ── Mock DispatchRepository ──

type mockDispatchRepo struct {
	records map[int64]*model.DispatchRecord
	nextID  int64
	// createConflict 模拟并发派发：Create 撞唯一约束而 GetByDate 查不到
	createConflict bool
}

func newMockDispatchRepo() *mockDispatchRepo {
	return &mockDispatchRepo{records: make(map[int64]*model.DispatchRecord), nextID: 1}
}

func (m *mockDispatchRepo) Create(_ context.Context, rec *model.DispatchRecord) error {
	if m.createConflict {
		return gorm.ErrDuplicatedKey
	}
	for _, r := range m.records {
		if r.DispatchDate.Equal(rec.DispatchDate) || r.Token == rec.Token {
			return gorm.ErrDuplicatedKey
		}
	}
	if rec.ID == 0 {
		rec.ID = m.nextID
		m.nextID++
	}
	rec.CreatedAt = time.Now()
	m.records[rec.ID] = rec
	return nil
}

func (m *mockDispatchRepo) GetByDate(_ context.Context, date time.Time) (*model.DispatchRecord, error) {
	for _, r := range m.records {
		if r.DispatchDate.Year() == date.Year() && r.DispatchDate.YearDay() == date.YearDay() {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDispatchRepo) GetByToken(_ context.Context, token string) (*model.DispatchRecord, error) {
	for _, r := range m.records {
		if r.Token == token {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDispatchRepo) GetByTokenForUpdate(ctx context.Context, token string) (*model.DispatchRecord, error) {
	return m.GetByToken(ctx, token)
}

func (m *mockDispatchRepo) MarkRedeemed(_ context.Context, id int64, employeeID int64) error {
	r, ok := m.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Used = true
	r.RedeemedBy = &employeeID
	return nil
}

func (m *mockDispatchRepo) ResetByToken(_ context.Context, token string) error {
	for _, r := range m.records {
		if r.Token == token {
			r.Used = false
			r.RedeemedBy = nil
			return nil
		}
	}
	return nil
}

func (m *mockDispatchRepo) List(_ context.Context, _, _ int) ([]model.DispatchRecord, int64, error) {
	var result []model.DispatchRecord
	for _, r := range m.records {
		result = append(result, *r)
	}
	return result, int64(len(result)), nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records      map[int64]*model.AttendanceRecord
	nextID       int64
	failOnCreate error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[int64]*model.AttendanceRecord), nextID: 1}
}

func (m *mockAttendanceRepo) Create(_ context.Context, rec *model.AttendanceRecord) error {
	if m.failOnCreate != nil {
		return m.failOnCreate
	}
	if rec.ID == 0 {
		rec.ID = m.nextID
		m.nextID++
	}
	rec.CreatedAt = time.Now()
	m.records[rec.ID] = rec
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id int64) (*model.AttendanceRecord, error) {
	if r, ok := m.records[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID int64, workDate time.Time) (*model.AttendanceRecord, error) {
	for _, r := range m.records {
		if r.EmployeeID == employeeID &&
			r.WorkDate.Year() == workDate.Year() && r.WorkDate.YearDay() == workDate.YearDay() {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) Delete(_ context.Context, id int64) error {
	delete(m.records, id)
	return nil
}

func (m *mockAttendanceRepo) List(_ context.Context, filters *repository.AttendanceListFilters, _, _ int) ([]model.AttendanceRecord, int64, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if filters != nil {
			if filters.EmployeeID != 0 && r.EmployeeID != filters.EmployeeID {
				continue
			}
			if filters.From != nil && r.WorkDate.Before(*filters.From) {
				continue
			}
			if filters.To != nil && r.WorkDate.After(*filters.To) {
				continue
			}
		}
		result = append(result, *r)
	}
	return result, int64(len(result)), nil
}

// ── Mock TxManager ──

// mockTxManager 直通事务：直接以同一组 mock 仓库执行回调，
// 返回错误时不做任何回滚（各测试自行断言副作用）
type mockTxManager struct {
	repo *repository.Repository
}

func (m *mockTxManager) Transaction(_ context.Context, fn func(txRepo *repository.Repository) error) error {
	return fn(m.repo)
}

// newTestRepository 组装一套全新的 mock 仓库
func newTestRepository() *repository.Repository {
	repo := &repository.Repository{
		User:       newMockUserRepo(),
		Employee:   newMockEmployeeRepo(),
		Recipient:  newMockRecipientRepo(),
		Attendance: newMockAttendanceRepo(),
		Dispatch:   newMockDispatchRepo(),
	}
	repo.Tx = &mockTxManager{repo: repo}
	return repo
}
