package calendar

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	calendarerrors "agripay/internal/calendar/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DayClassification is what downstream pay computation consumes. Holiday
// and non-working are independent signals: a holiday event does not make
// a day non-working unless the day is also marked not working.
type DayClassification struct {
	Date      time.Time
	IsWorking bool
	Events    []CalendarEvent
}

//go:generate mockgen -source=calendar_service.go -destination=mock/calendar_service_mock.go -package=mock
type Service interface {
	ClassifyDay(ctx context.Context, companyID string, date time.Time) (DayClassification, error)
	ClassifyRange(ctx context.Context, companyID string, from, to time.Time) ([]DayClassification, error)
	SetWorkingDay(ctx context.Context, companyID string, date time.Time, working bool) (DayClassificationResponse, error)
	AddEvent(ctx context.Context, companyID string, date time.Time, req AddEventRequest) (DayClassificationResponse, error)
	RemoveEvent(ctx context.Context, companyID, eventID string) error
	IsHoliday(ctx context.Context, companyID string, date time.Time) (bool, error)
	IsNonWorkingDay(ctx context.Context, companyID string, date time.Time) (bool, error)
}

type service struct {
	db   *sql.DB
	repo Repository
}

func NewService(db *sql.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

// defaultWorking is the classification for dates with no stored record.
func defaultWorking(date time.Time) bool {
	return date.Weekday() != DefaultNonWorkingWeekday
}

func (s *service) ClassifyDay(
	ctx context.Context,
	companyID string,
	date time.Time,
) (DayClassification, error) {
	day, err := s.repo.FindByDate(ctx, companyID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DayClassification{
				Date:      date,
				IsWorking: defaultWorking(date),
			}, nil
		}
		return DayClassification{}, err
	}

	return DayClassification{
		Date:      day.Date,
		IsWorking: day.Working,
		Events:    day.Events,
	}, nil
}

// ClassifyRange resolves every date in [from, to]: stored records where
// they exist, weekday defaults elsewhere.
func (s *service) ClassifyRange(
	ctx context.Context,
	companyID string,
	from, to time.Time,
) ([]DayClassification, error) {
	if to.Before(from) {
		return nil, calendarerrors.ErrInvalidDateFormat
	}

	stored, err := s.repo.FindRange(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]CalendarDay, len(stored))
	for _, day := range stored {
		byDate[day.Date.Format("2006-01-02")] = day
	}

	var days []DayClassification
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		if day, ok := byDate[date.Format("2006-01-02")]; ok {
			days = append(days, DayClassification{
				Date:      day.Date,
				IsWorking: day.Working,
				Events:    day.Events,
			})
			continue
		}
		days = append(days, DayClassification{
			Date:      date,
			IsWorking: defaultWorking(date),
		})
	}
	return days, nil
}

func (s *service) SetWorkingDay(
	ctx context.Context,
	companyID string,
	date time.Time,
	working bool,
) (DayClassificationResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DayClassificationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return DayClassificationResponse{}, calendarerrors.ErrInvalidCompanyID
	}

	day, err := qtx.FindByDate(ctx, companyID, date)
	switch {
	case err == nil:
		day.Working = working
		if err := qtx.Update(ctx, day); err != nil {
			return DayClassificationResponse{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		day = &CalendarDay{
			ID:        uuid.New(),
			CompanyID: companyUUID,
			Date:      date,
			Working:   working,
		}
		if err := qtx.Create(ctx, day); err != nil {
			return DayClassificationResponse{}, err
		}
	default:
		return DayClassificationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return DayClassificationResponse{}, err
	}

	return mapToDayResponse(*day), nil
}

func (s *service) AddEvent(
	ctx context.Context,
	companyID string,
	date time.Time,
	req AddEventRequest,
) (DayClassificationResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DayClassificationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return DayClassificationResponse{}, calendarerrors.ErrInvalidCompanyID
	}

	eventType := strings.ToUpper(strings.TrimSpace(req.EventType))
	if eventType == "" {
		return DayClassificationResponse{}, calendarerrors.ErrInvalidEventType
	}

	day, err := qtx.FindByDate(ctx, companyID, date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		day = &CalendarDay{
			ID:        uuid.New(),
			CompanyID: companyUUID,
			Date:      date,
			Working:   defaultWorking(date),
		}
		if createErr := qtx.Create(ctx, day); createErr != nil {
			return DayClassificationResponse{}, createErr
		}
	} else if err != nil {
		return DayClassificationResponse{}, err
	}

	event := &CalendarEvent{
		ID:          uuid.New(),
		CompanyID:   companyUUID,
		DayID:       day.ID,
		EventType:   eventType,
		Description: req.Description,
	}
	if err := qtx.CreateEvent(ctx, event); err != nil {
		return DayClassificationResponse{}, err
	}
	day.Events = append(day.Events, *event)

	if err := tx.Commit(); err != nil {
		return DayClassificationResponse{}, err
	}

	return mapToDayResponse(*day), nil
}

func (s *service) RemoveEvent(ctx context.Context, companyID, eventID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.DeleteEvent(ctx, companyID, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return calendarerrors.ErrEventNotFound
		}
		return err
	}

	return tx.Commit()
}

func (s *service) IsHoliday(ctx context.Context, companyID string, date time.Time) (bool, error) {
	classification, err := s.ClassifyDay(ctx, companyID, date)
	if err != nil {
		return false, err
	}
	for _, event := range classification.Events {
		if event.EventType == EventTypeHoliday {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) IsNonWorkingDay(ctx context.Context, companyID string, date time.Time) (bool, error) {
	classification, err := s.ClassifyDay(ctx, companyID, date)
	if err != nil {
		return false, err
	}
	return !classification.IsWorking, nil
}

func mapToDayResponse(day CalendarDay) DayClassificationResponse {
	resp := DayClassificationResponse{
		Date:      day.Date.Format("2006-01-02"),
		IsWorking: day.Working,
		Events:    make([]EventResponse, 0, len(day.Events)),
	}
	for _, event := range day.Events {
		if event.EventType == EventTypeHoliday {
			resp.IsHoliday = true
		}
		resp.Events = append(resp.Events, EventResponse{
			ID:          event.ID.String(),
			EventType:   event.EventType,
			Description: event.Description,
		})
	}
	return resp
}
