package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"schedule_api/internal/response"
	"schedule_api/internal/schedule"
)

// OnceEditRequest — разовая правка. Незаполненные поля пары означают
// «оставить как есть»; deleted=true отменяет пару.
type OnceEditRequest struct {
	GroupName  string  `json:"group_name" binding:"required"`
	Date       string  `json:"date" binding:"required"` // YYYY-MM-DD
	PairNumber int     `json:"pair_number" binding:"required"`
	Subject    *string `json:"subject"`
	Teacher    *string `json:"teacher"`
	Room       *string `json:"room"`
	TimeStart  *string `json:"time_start"`
	TimeEnd    *string `json:"time_end"`
	Deleted    bool    `json:"deleted"`
}

// WeeklyEditRequest — еженедельная правка; week_type задаёт чётность
// недель, на которых она действует (all/odd/even).
type WeeklyEditRequest struct {
	GroupName  string  `json:"group_name" binding:"required"`
	DayOfWeek  int     `json:"day_of_week" binding:"required"`
	PairNumber int     `json:"pair_number" binding:"required"`
	WeekType   string  `json:"week_type"`
	Subject    *string `json:"subject"`
	Teacher    *string `json:"teacher"`
	Room       *string `json:"room"`
	TimeStart  *string `json:"time_start"`
	TimeEnd    *string `json:"time_end"`
	Deleted    bool    `json:"deleted"`
}

// @Summary		Разовая правка расписания
// @Description	Создаёт или заменяет правку на конкретную дату по ключу (группа, дата, номер пары). Только для администратора.
// @Tags			edits
// @Security		BearerAuth
// @Accept			json
// @Produce		json
// @Param			edit	body		OnceEditRequest				true	"Правка"
// @Success		200		{object}	response.SuccessResponse	"Правка сохранена"
// @Failure		400		{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR) или некорректная дата (INVALID_DATE)"
// @Failure		401		{object}	response.ErrorResponse		"Требуется авторизация (NO_AUTH_HEADER, INVALID_TOKEN)"
// @Failure		403		{object}	response.ErrorResponse		"Недостаточно прав (FORBIDDEN)"
// @Failure		500		{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/edits/once [post]
func (h *Handler) UpsertOnceEdit(c *gin.Context) {
	var req OnceEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_DATE",
			Message: "Дата должна быть в формате YYYY-MM-DD",
			Details: err.Error(),
		})
		return
	}

	in := schedule.OnceEditInput{
		EditInput: schedule.EditInput{
			GroupName:  req.GroupName,
			PairNumber: req.PairNumber,
			Subject:    req.Subject,
			Teacher:    req.Teacher,
			Room:       req.Room,
			TimeStart:  req.TimeStart,
			TimeEnd:    req.TimeEnd,
			Deleted:    req.Deleted,
		},
		Date: date,
	}
	if err := h.svc.UpsertOnce(c.Request.Context(), in); err != nil {
		h.respondEditError(c, err)
		return
	}

	h.dropScheduleCache(c.Request.Context(), req.GroupName)
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Правка сохранена"})
}

// @Summary		Еженедельная правка расписания
// @Description	Создаёт или заменяет повторяющуюся правку по ключу (группа, день недели, номер пары, чётность). Нераспознанная чётность приводится к all. Только для администратора.
// @Tags			edits
// @Security		BearerAuth
// @Accept			json
// @Produce		json
// @Param			edit	body		WeeklyEditRequest			true	"Правка"
// @Success		200		{object}	response.SuccessResponse	"Правка сохранена"
// @Failure		400		{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		401		{object}	response.ErrorResponse		"Требуется авторизация (NO_AUTH_HEADER, INVALID_TOKEN)"
// @Failure		403		{object}	response.ErrorResponse		"Недостаточно прав (FORBIDDEN)"
// @Failure		500		{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/edits/weekly [post]
func (h *Handler) UpsertWeeklyEdit(c *gin.Context) {
	var req WeeklyEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	in := schedule.WeeklyEditInput{
		EditInput: schedule.EditInput{
			GroupName:  req.GroupName,
			PairNumber: req.PairNumber,
			Subject:    req.Subject,
			Teacher:    req.Teacher,
			Room:       req.Room,
			TimeStart:  req.TimeStart,
			TimeEnd:    req.TimeEnd,
			Deleted:    req.Deleted,
		},
		DayOfWeek: req.DayOfWeek,
		WeekType:  req.WeekType,
	}
	if err := h.svc.UpsertWeekly(c.Request.Context(), in); err != nil {
		h.respondEditError(c, err)
		return
	}

	h.dropScheduleCache(c.Request.Context(), req.GroupName)
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Правка сохранена"})
}

// @Summary		Удаление разовых правок за день
// @Description	Удаляет все разовые правки группы на дату (все номера пар). Только для администратора.
// @Tags			edits
// @Security		BearerAuth
// @Produce		json
// @Param			group	query		string	true	"Название группы"
// @Param			date	query		string	true	"Дата (YYYY-MM-DD)"
// @Success		200		{object}	response.SuccessResponse	"Правки удалены"
// @Failure		400		{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR) или некорректная дата (INVALID_DATE)"
// @Failure		401		{object}	response.ErrorResponse		"Требуется авторизация (NO_AUTH_HEADER, INVALID_TOKEN)"
// @Failure		403		{object}	response.ErrorResponse		"Недостаточно прав (FORBIDDEN)"
// @Failure		500		{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/edits/once [delete]
func (h *Handler) DeleteOnceEditsForDay(c *gin.Context) {
	group := c.Query("group")
	dateStr := c.Query("date")
	if group == "" || dateStr == "" {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Необходимо указать group и date",
		})
		return
	}

	date, err := schedule.ParseDate(dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_DATE",
			Message: "Дата должна быть в формате YYYY-MM-DD",
			Details: err.Error(),
		})
		return
	}

	if err := h.svc.DeleteOnceForDay(c.Request.Context(), group, date); err != nil {
		h.respondEditError(c, err)
		return
	}

	h.dropScheduleCache(c.Request.Context(), group)
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Правки удалены"})
}

func (h *Handler) respondEditError(c *gin.Context, err error) {
	if errors.Is(err, schedule.ErrValidation) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, response.ErrorResponse{
		Code:    "DB_ERROR",
		Message: "Ошибка при сохранении правки",
		Details: err.Error(),
	})
}
