package schedule

import (
	"context"
	"time"

	"gorm.io/gorm"

	"schedule_api/internal/models"
)

// groupNormExpr — SQL-аналог функции Normalize. Базовое расписание
// фильтруется по нормализованному имени группы прямо в запросе, чтобы
// разные написания («ИС-21», «ис 21», «ИC-21» с латиницей) находили одни
// и те же строки импорта.
const groupNormExpr = "regexp_replace(lower(translate(group_name, '" +
	latinHomoglyphs + "', '" + cyrillicHomoglyphs + "')), '[^0-9а-яё]', '', 'g')"

// teacherMatchExpr — сравнение преподавателя без учёта регистра и краевых
// пробелов, используется при сборе групп-кандидатов.
const teacherMatchExpr = "lower(btrim(teacher)) = lower(btrim(?))"

// Repo — доступ к трём слоям расписания и пользовательским правкам.
// Конструируется явно с готовым подключением; пакет не держит глобального
// состояния.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Base возвращает строки базового расписания группы на день недели с учётом
// чётности. Группа сравнивается по нормализованной форме (см. Normalize).
func (r *Repo) Base(ctx context.Context, normGroup string, weekday int, parity string) ([]models.WeekdaySchedule, error) {
	var rows []models.WeekdaySchedule
	err := r.db.WithContext(ctx).
		Where(groupNormExpr+" = ?", normGroup).
		Where("weekday = ?", weekday).
		Where("week_type IN ?", []string{WeekAll, parity}).
		Order("pair_number").
		Find(&rows).Error
	return rows, err
}

// Weekly возвращает еженедельные правки группы на день недели. В отличие от
// базового слоя группа сравнивается точно: правки вводит администратор и
// обязан использовать каноническое написание.
func (r *Repo) Weekly(ctx context.Context, group string, dayOfWeek int, parity string) ([]models.WeeklyEdit, error) {
	var rows []models.WeeklyEdit
	err := r.db.WithContext(ctx).
		Where("group_name = ?", group).
		Where("day_of_week = ?", dayOfWeek).
		Where("week_type IN ?", []string{WeekAll, parity}).
		Find(&rows).Error
	return rows, err
}

// Once возвращает разовые правки группы на дату (точное совпадение).
func (r *Repo) Once(ctx context.Context, group string, date time.Time) ([]models.OnceEdit, error) {
	var rows []models.OnceEdit
	err := r.db.WithContext(ctx).
		Where("group_name = ?", group).
		Where("edit_date = ?", truncateDate(date)).
		Find(&rows).Error
	return rows, err
}

// BaseTeacherGroups — группы, у которых в базовом расписании на этот день
// есть пары данного преподавателя.
func (r *Repo) BaseTeacherGroups(ctx context.Context, weekday int, parity, teacher string) ([]string, error) {
	var groups []string
	err := r.db.WithContext(ctx).
		Model(&models.WeekdaySchedule{}).
		Distinct().
		Where("weekday = ?", weekday).
		Where("week_type IN ?", []string{WeekAll, parity}).
		Where(teacherMatchExpr, teacher).
		Pluck("group_name", &groups).Error
	return groups, err
}

// WeeklyTeacherGroups — группы с еженедельными правками преподавателя.
func (r *Repo) WeeklyTeacherGroups(ctx context.Context, dayOfWeek int, parity, teacher string) ([]string, error) {
	var groups []string
	err := r.db.WithContext(ctx).
		Model(&models.WeeklyEdit{}).
		Distinct().
		Where("day_of_week = ?", dayOfWeek).
		Where("week_type IN ?", []string{WeekAll, parity}).
		Where(teacherMatchExpr, teacher).
		Pluck("group_name", &groups).Error
	return groups, err
}

// OnceTeacherGroups — группы с разовыми правками преподавателя на дату.
func (r *Repo) OnceTeacherGroups(ctx context.Context, date time.Time, teacher string) ([]string, error) {
	var groups []string
	err := r.db.WithContext(ctx).
		Model(&models.OnceEdit{}).
		Distinct().
		Where("edit_date = ?", truncateDate(date)).
		Where(teacherMatchExpr, teacher).
		Pluck("group_name", &groups).Error
	return groups, err
}

// Groups — все группы из базового расписания.
func (r *Repo) Groups(ctx context.Context) ([]string, error) {
	var groups []string
	err := r.db.WithContext(ctx).
		Model(&models.WeekdaySchedule{}).
		Distinct().
		Order("group_name").
		Pluck("group_name", &groups).Error
	return groups, err
}

// SaveOnce заменяет разовую правку по ключу (группа, дата, номер пары).
// Удаление и вставка идут одной транзакцией, чтобы ключ ни в какой момент
// не оставался пустым.
func (r *Repo) SaveOnce(ctx context.Context, edit models.OnceEdit) error {
	edit.EditDate = truncateDate(edit.EditDate)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("group_name = ? AND edit_date = ? AND pair_number = ?",
				edit.GroupName, edit.EditDate, edit.PairNumber).
			Delete(&models.OnceEdit{}).Error; err != nil {
			return err
		}
		return tx.Create(&edit).Error
	})
}

// SaveWeekly заменяет еженедельную правку по ключу
// (группа, день недели, номер пары, чётность).
func (r *Repo) SaveWeekly(ctx context.Context, edit models.WeeklyEdit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("group_name = ? AND day_of_week = ? AND pair_number = ? AND week_type = ?",
				edit.GroupName, edit.DayOfWeek, edit.PairNumber, edit.WeekType).
			Delete(&models.WeeklyEdit{}).Error; err != nil {
			return err
		}
		return tx.Create(&edit).Error
	})
}

// DeleteOnceForDay удаляет все разовые правки группы на дату — все номера
// пар сразу, так администратор сбрасывает день перед повторным вводом.
func (r *Repo) DeleteOnceForDay(ctx context.Context, group string, date time.Time) error {
	return r.db.WithContext(ctx).
		Where("group_name = ? AND edit_date = ?", group, truncateDate(date)).
		Delete(&models.OnceEdit{}).Error
}

// Ping проверяет доступность базы (для /healthz).
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec("SELECT 1").Error
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
