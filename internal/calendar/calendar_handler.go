package calendar

import (
	"net/http"
	"time"

	calendarerrors "agripay/internal/calendar/errors"
	"agripay/internal/shared/apperror"
	"agripay/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func parseDateParam(c *gin.Context) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		httpErr := apperror.ToHTTP(calendarerrors.ErrInvalidDateFormat)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return time.Time{}, false
	}
	return date, true
}

func (h *Handler) GetDay(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")

	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	classification, err := h.service.ClassifyDay(ctx, companyID, date)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp := mapToDayResponse(CalendarDay{
		Date:    classification.Date,
		Working: classification.IsWorking,
		Events:  classification.Events,
	})
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetRange(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		h.writeServiceError(c, calendarerrors.ErrInvalidDateFormat)
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		h.writeServiceError(c, calendarerrors.ErrInvalidDateFormat)
		return
	}

	days, err := h.service.ClassifyRange(ctx, companyID, from, to)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp := make([]DayClassificationResponse, 0, len(days))
	for _, day := range days {
		resp = append(resp, mapToDayResponse(CalendarDay{
			Date:    day.Date,
			Working: day.IsWorking,
			Events:  day.Events,
		}))
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) SetWorkingDay(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")

	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	var req SetWorkingDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	resp, err := h.service.SetWorkingDay(ctx, companyID, date, req.Working)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) AddEvent(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")

	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	var req AddEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	resp, err := h.service.AddEvent(ctx, companyID, date, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) RemoveEvent(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")
	eventID := c.Param("eventId")

	if err := h.service.RemoveEvent(ctx, companyID, eventID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
