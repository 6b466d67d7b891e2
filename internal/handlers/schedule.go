package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"schedule_api/internal/response"
	"schedule_api/internal/schedule"
)

const cacheTTL = 10 * time.Minute

// Service — операции движка расписания, которые нужны HTTP-слою.
type Service interface {
	ScheduleForGroup(ctx context.Context, group string, date time.Time) ([]schedule.ResolvedSession, error)
	ScheduleForTeacher(ctx context.Context, teacher string, date time.Time) ([]schedule.ResolvedSession, error)
	WeekOverview(ctx context.Context, group, teacher string, monday time.Time) ([]schedule.DayCount, error)
	Groups(ctx context.Context) ([]string, error)
	UpsertOnce(ctx context.Context, in schedule.OnceEditInput) error
	UpsertWeekly(ctx context.Context, in schedule.WeeklyEditInput) error
	DeleteOnceForDay(ctx context.Context, group string, date time.Time) error
	Ping(ctx context.Context) error
}

// Handler — HTTP-обработчики расписания. Кэш опционален: при nil-клиенте
// запросы всегда идут в сервис.
type Handler struct {
	svc   Service
	cache *redis.Client
}

func NewHandler(svc Service, cache *redis.Client) *Handler {
	return &Handler{svc: svc, cache: cache}
}

type GroupsResponse struct {
	Groups []string `json:"groups"`
}

type WeekOverviewResponse struct {
	Days []schedule.DayCount `json:"days"`
}

// @Summary		Проверка живости сервиса
// @Tags			service
// @Produce		json
// @Success		200	{object}	map[string]string	"Статус ok"
// @Failure		500	{object}	response.ErrorResponse	"База данных недоступна (DB_ERROR)"
// @Router			/healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "База данных недоступна",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary		Список групп
// @Description	Все группы из базового расписания
// @Tags			schedule
// @Produce		json
// @Success		200	{object}	GroupsResponse			"Список групп"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/groups [get]
func (h *Handler) GetGroups(c *gin.Context) {
	groups, err := h.svc.Groups(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении списка групп",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, GroupsResponse{Groups: groups})
}

// @Summary		Расписание группы на дату
// @Description	Итоговое расписание: базовое + еженедельные правки + разовые правки (разовые всегда побеждают). Результат кэшируется в Redis.
// @Tags			schedule
// @Produce		json
// @Param			group	query		string	true	"Название группы"
// @Param			date	query		string	true	"Дата (YYYY-MM-DD)"
// @Success		200		{array}		schedule.ResolvedSession	"Расписание на день"
// @Failure		400		{object}	response.ErrorResponse		"Некорректная дата (INVALID_DATE) или параметры (INVALID_REQUEST)"
// @Failure		500		{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/schedule [get]
func (h *Handler) GetSchedule(c *gin.Context) {
	group := c.Query("group")
	dateStr := c.Query("date")
	if group == "" || dateStr == "" {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_REQUEST",
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

	ctx := c.Request.Context()
	cacheKey := "schedule_" + schedule.Normalize(group) + "_" + dateStr

	// Проверка кэша
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			return
		}
	}

	sessions, err := h.svc.ScheduleForGroup(ctx, group, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении расписания",
			Details: err.Error(),
		})
		return
	}
	if sessions == nil {
		sessions = []schedule.ResolvedSession{}
	}

	if h.cache != nil {
		if body, err := json.Marshal(sessions); err == nil {
			h.cache.Set(ctx, cacheKey, body, cacheTTL)
		}
	}

	c.JSON(http.StatusOK, sessions)
}

// @Summary		Расписание преподавателя на дату
// @Description	Пары преподавателя по всем группам с учётом правок: фильтрация идёт после слияния, поэтому переназначенные пары попадают к новому преподавателю
// @Tags			schedule
// @Produce		json
// @Param			teacher	query		string	true	"ФИО преподавателя"
// @Param			date	query		string	true	"Дата (YYYY-MM-DD)"
// @Success		200		{array}		schedule.ResolvedSession	"Пары преподавателя"
// @Failure		400		{object}	response.ErrorResponse		"Некорректная дата (INVALID_DATE) или параметры (INVALID_REQUEST)"
// @Failure		500		{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/schedule/teacher [get]
func (h *Handler) GetTeacherSchedule(c *gin.Context) {
	teacher := c.Query("teacher")
	dateStr := c.Query("date")
	if teacher == "" || dateStr == "" {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "Необходимо указать teacher и date",
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

	sessions, err := h.svc.ScheduleForTeacher(c.Request.Context(), teacher, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении расписания преподавателя",
			Details: err.Error(),
		})
		return
	}
	if sessions == nil {
		sessions = []schedule.ResolvedSession{}
	}
	c.JSON(http.StatusOK, sessions)
}

// @Summary		Недельная сводка
// @Description	Количество пар на каждый из 7 дней начиная с monday; задаётся ровно один из параметров group/teacher
// @Tags			schedule
// @Produce		json
// @Param			group	query		string	false	"Название группы"
// @Param			teacher	query		string	false	"ФИО преподавателя"
// @Param			monday	query		string	true	"Понедельник недели (YYYY-MM-DD)"
// @Success		200		{object}	WeekOverviewResponse	"Сводка по дням"
// @Failure		400		{object}	response.ErrorResponse	"Некорректная дата (INVALID_DATE) или параметры (INVALID_REQUEST)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/week [get]
func (h *Handler) GetWeekOverview(c *gin.Context) {
	group := c.Query("group")
	teacher := c.Query("teacher")
	mondayStr := c.Query("monday")
	if mondayStr == "" {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "Необходимо указать monday",
		})
		return
	}

	monday, err := schedule.ParseDate(mondayStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_DATE",
			Message: "Дата должна быть в формате YYYY-MM-DD",
			Details: err.Error(),
		})
		return
	}

	days, err := h.svc.WeekOverview(c.Request.Context(), group, teacher, monday)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_REQUEST",
				Message: "Нужен ровно один из параметров group/teacher",
				Details: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при построении недельной сводки",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, WeekOverviewResponse{Days: days})
}

// dropScheduleCache сбрасывает закэшированные дни группы после правки.
func (h *Handler) dropScheduleCache(ctx context.Context, group string) {
	if h.cache == nil {
		return
	}
	pattern := "schedule_" + schedule.Normalize(group) + "_*"
	if keys, err := h.cache.Keys(ctx, pattern).Result(); err == nil && len(keys) > 0 {
		h.cache.Del(ctx, keys...)
	}
}
