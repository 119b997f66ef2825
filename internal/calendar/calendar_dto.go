package calendar

type SetWorkingDayRequest struct {
	Working bool `json:"working"`
}

type AddEventRequest struct {
	EventType   string `json:"event_type" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type EventResponse struct {
	ID          string `json:"id"`
	EventType   string `json:"event_type"`
	Description string `json:"description"`
}

type DayClassificationResponse struct {
	Date      string          `json:"date"`
	IsWorking bool            `json:"is_working"`
	IsHoliday bool            `json:"is_holiday"`
	Events    []EventResponse `json:"events"`
}
