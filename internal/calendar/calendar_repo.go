package calendar

import (
	"context"
	"database/sql"
	"time"

	"agripay/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=calendar_repo.go -destination=mock/calendar_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByDate(ctx context.Context, companyID string, date time.Time) (*CalendarDay, error)
	FindRange(ctx context.Context, companyID string, from, to time.Time) ([]CalendarDay, error)
	Create(ctx context.Context, day *CalendarDay) error
	Update(ctx context.Context, day *CalendarDay) error
	CreateEvent(ctx context.Context, event *CalendarEvent) error
	DeleteEvent(ctx context.Context, companyID, eventID string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	// The fresh session gets its own statement, so rebinding the
	// connection cannot leak the transaction into the pool repository.
	db := r.db.Session(&gorm.Session{NewDB: true, Context: context.Background()})
	db.Statement.ConnPool = tx
	return &repository{db: db, tx: tx}
}

func (r *repository) FindByDate(ctx context.Context, companyID string, date time.Time) (*CalendarDay, error) {
	var day CalendarDay
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Events").
		Where("date = ?", date.Format("2006-01-02")).
		First(&day).Error
	return &day, err
}

func (r *repository) FindRange(ctx context.Context, companyID string, from, to time.Time) ([]CalendarDay, error) {
	var days []CalendarDay
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Events").
		Where("date >= ? AND date <= ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date ASC").
		Find(&days).Error
	return days, err
}

func (r *repository) Create(ctx context.Context, day *CalendarDay) error {
	return r.db.WithContext(ctx).Create(day).Error
}

func (r *repository) Update(ctx context.Context, day *CalendarDay) error {
	return r.db.WithContext(ctx).
		Model(&CalendarDay{}).
		Where("id = ?", day.ID).
		Update("working", day.Working).Error
}

func (r *repository) CreateEvent(ctx context.Context, event *CalendarEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) DeleteEvent(ctx context.Context, companyID, eventID string) error {
	res := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&CalendarEvent{}, "id = ?", eventID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
