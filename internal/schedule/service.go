package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"schedule_api/internal/models"
)

// teacherFanOutLimit ограничивает число одновременных слияний в
// преподавательском запросе.
const teacherFanOutLimit = 8

// Repository — читатель трёх слоёв и мутатор правок. Реализуется *Repo,
// в тестах подменяется фейком.
type Repository interface {
	Base(ctx context.Context, normGroup string, weekday int, parity string) ([]models.WeekdaySchedule, error)
	Weekly(ctx context.Context, group string, dayOfWeek int, parity string) ([]models.WeeklyEdit, error)
	Once(ctx context.Context, group string, date time.Time) ([]models.OnceEdit, error)
	BaseTeacherGroups(ctx context.Context, weekday int, parity, teacher string) ([]string, error)
	WeeklyTeacherGroups(ctx context.Context, dayOfWeek int, parity, teacher string) ([]string, error)
	OnceTeacherGroups(ctx context.Context, date time.Time, teacher string) ([]string, error)
	Groups(ctx context.Context) ([]string, error)
	SaveOnce(ctx context.Context, edit models.OnceEdit) error
	SaveWeekly(ctx context.Context, edit models.WeeklyEdit) error
	DeleteOnceForDay(ctx context.Context, group string, date time.Time) error
	Ping(ctx context.Context) error
}

// Notifier доставляет уведомление об изменении расписания. Доставка
// best-effort: реализация не возвращает ошибок и не должна блокировать.
type Notifier interface {
	Notify(group, message string)
}

// DayCount — количество пар на дату, элемент недельной сводки.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// EditInput — правка, как её прислал администратор. Nil-поле означает
// «оставить как есть»; пустая строка приравнивается к nil при наложении.
type EditInput struct {
	GroupName  string
	PairNumber int
	Subject    *string
	Teacher    *string
	Room       *string
	TimeStart  *string
	TimeEnd    *string
	Deleted    bool
}

// OnceEditInput — разовая правка на дату.
type OnceEditInput struct {
	EditInput
	Date time.Time
}

// WeeklyEditInput — еженедельная правка; WeekType — область действия
// (all/odd/even), нераспознанное значение приводится к all.
type WeeklyEditInput struct {
	EditInput
	DayOfWeek int
	WeekType  string
}

// Service реализует разрешение расписания и мутации правок.
type Service struct {
	repo     Repository
	notifier Notifier
	anchor   string        // ODD_WEEK_ANCHOR, понедельник нечётной недели
	timeout  time.Duration // дедлайн fan-out преподавательского запроса
}

func NewService(repo Repository, notifier Notifier, anchor string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{repo: repo, notifier: notifier, anchor: anchor, timeout: timeout}
}

// ScheduleForGroup — расписание группы на дату: три чтения и слияние.
// Чтения идут без общего снапшота; гонка с одновременной записью правки
// даёт рассинхрон не дольше долей секунды и для расписания приемлема.
func (s *Service) ScheduleForGroup(ctx context.Context, group string, date time.Time) ([]ResolvedSession, error) {
	weekday, parity := ResolveDate(date, s.anchor)
	return s.mergeForGroupDate(ctx, group, date, weekday, parity)
}

func (s *Service) mergeForGroupDate(ctx context.Context, group string, date time.Time, weekday int, parity string) ([]ResolvedSession, error) {
	base, err := s.repo.Base(ctx, Normalize(group), weekday, parity)
	if err != nil {
		return nil, err
	}
	weekly, err := s.repo.Weekly(ctx, group, weekday, parity)
	if err != nil {
		return nil, err
	}
	once, err := s.repo.Once(ctx, group, date)
	if err != nil {
		return nil, err
	}
	return mergeTiers(group, weekday, base, weekly, once), nil
}

// ScheduleForTeacher — все пары преподавателя на дату. Группы-кандидаты
// собираются из всех трёх слоёв, для каждой выполняется полное слияние, и
// только после него результат фильтруется по преподавателю: правка может
// и передать пару этому преподавателю, и забрать у него.
func (s *Service) ScheduleForTeacher(ctx context.Context, teacher string, date time.Time) ([]ResolvedSession, error) {
	weekday, parity := ResolveDate(date, s.anchor)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	candidates, err := s.candidateGroups(ctx, teacher, date, weekday, parity)
	if err != nil {
		return nil, err
	}

	// Слияния независимы, порядок восстанавливается сортировкой ниже.
	perGroup := make([][]ResolvedSession, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(teacherFanOutLimit)
	for i, group := range candidates {
		i, group := i, group
		g.Go(func() error {
			merged, err := s.mergeForGroupDate(gctx, group, date, weekday, parity)
			if err != nil {
				return err
			}
			kept := merged[:0]
			for _, session := range merged {
				if sameTeacher(session.Teacher, teacher) {
					kept = append(kept, session)
				}
			}
			perGroup[i] = kept
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result []ResolvedSession
	for _, sessions := range perGroup {
		result = append(result, sessions...)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].PairNumber != result[j].PairNumber {
			return result[i].PairNumber < result[j].PairNumber
		}
		return result[i].TimeStart < result[j].TimeStart
	})
	return result, nil
}

// candidateGroups объединяет группы из трёх слоёв в множество без
// дубликатов, сохраняя порядок первого появления.
func (s *Service) candidateGroups(ctx context.Context, teacher string, date time.Time, weekday int, parity string) ([]string, error) {
	fromBase, err := s.repo.BaseTeacherGroups(ctx, weekday, parity, teacher)
	if err != nil {
		return nil, err
	}
	fromWeekly, err := s.repo.WeeklyTeacherGroups(ctx, weekday, parity, teacher)
	if err != nil {
		return nil, err
	}
	fromOnce, err := s.repo.OnceTeacherGroups(ctx, date, teacher)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var candidates []string
	for _, group := range append(append(fromBase, fromWeekly...), fromOnce...) {
		if group == "" || seen[group] {
			continue
		}
		seen[group] = true
		candidates = append(candidates, group)
	}
	return candidates, nil
}

// WeekOverview — количество пар на каждый из 7 дней начиная с monday.
// Должен быть задан ровно один из group/teacher.
func (s *Service) WeekOverview(ctx context.Context, group, teacher string, monday time.Time) ([]DayCount, error) {
	if (group == "") == (teacher == "") {
		return nil, fmt.Errorf("%w: нужен ровно один из параметров group/teacher", ErrInvalidRequest)
	}

	overview := make([]DayCount, 0, 7)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		var (
			sessions []ResolvedSession
			err      error
		)
		if group != "" {
			sessions, err = s.ScheduleForGroup(ctx, group, day)
		} else {
			sessions, err = s.ScheduleForTeacher(ctx, teacher, day)
		}
		if err != nil {
			return nil, err
		}
		overview = append(overview, DayCount{
			Date:  day.Format(dateLayout),
			Count: len(sessions),
		})
	}
	return overview, nil
}

// Groups — список групп базового расписания.
func (s *Service) Groups(ctx context.Context) ([]string, error) {
	return s.repo.Groups(ctx)
}

// Ping — проверка доступности хранилища.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// UpsertOnce заменяет разовую правку по ключу (группа, дата, номер пары).
func (s *Service) UpsertOnce(ctx context.Context, in OnceEditInput) error {
	if in.GroupName == "" {
		return fmt.Errorf("%w: не указана группа", ErrValidation)
	}
	if in.PairNumber <= 0 {
		return fmt.Errorf("%w: номер пары должен быть положительным", ErrValidation)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: не указана дата", ErrValidation)
	}

	edit := models.OnceEdit{
		GroupName:  in.GroupName,
		EditDate:   in.Date,
		PairNumber: in.PairNumber,
		Subject:    in.Subject,
		Teacher:    in.Teacher,
		Room:       in.Room,
		TimeStart:  in.TimeStart,
		TimeEnd:    in.TimeEnd,
		Deleted:    in.Deleted,
	}
	if err := s.repo.SaveOnce(ctx, edit); err != nil {
		return err
	}

	s.notify(in.GroupName, fmt.Sprintf("Расписание группы %s изменено на %s: пара %d",
		in.GroupName, in.Date.Format(dateLayout), in.PairNumber))
	return nil
}

// UpsertWeekly заменяет еженедельную правку по ключу
// (группа, день недели, номер пары, чётность).
func (s *Service) UpsertWeekly(ctx context.Context, in WeeklyEditInput) error {
	if in.GroupName == "" {
		return fmt.Errorf("%w: не указана группа", ErrValidation)
	}
	if in.PairNumber <= 0 {
		return fmt.Errorf("%w: номер пары должен быть положительным", ErrValidation)
	}
	if in.DayOfWeek < 1 || in.DayOfWeek > 7 {
		return fmt.Errorf("%w: день недели должен быть в диапазоне 1..7", ErrValidation)
	}

	edit := models.WeeklyEdit{
		GroupName:  in.GroupName,
		DayOfWeek:  in.DayOfWeek,
		PairNumber: in.PairNumber,
		WeekType:   normalizeWeekType(in.WeekType),
		Subject:    in.Subject,
		Teacher:    in.Teacher,
		Room:       in.Room,
		TimeStart:  in.TimeStart,
		TimeEnd:    in.TimeEnd,
		Deleted:    in.Deleted,
	}
	if err := s.repo.SaveWeekly(ctx, edit); err != nil {
		return err
	}

	s.notify(in.GroupName, fmt.Sprintf("Еженедельная правка для группы %s: день %d, пара %d",
		in.GroupName, in.DayOfWeek, in.PairNumber))
	return nil
}

// DeleteOnceForDay удаляет все разовые правки группы на дату.
func (s *Service) DeleteOnceForDay(ctx context.Context, group string, date time.Time) error {
	if group == "" {
		return fmt.Errorf("%w: не указана группа", ErrValidation)
	}
	if err := s.repo.DeleteOnceForDay(ctx, group, date); err != nil {
		return err
	}

	s.notify(group, fmt.Sprintf("Разовые правки группы %s на %s удалены",
		group, date.Format(dateLayout)))
	return nil
}

// normalizeWeekType приводит область действия правки к all/odd/even;
// всё нераспознанное молча становится all.
func normalizeWeekType(weekType string) string {
	switch strings.ToLower(strings.TrimSpace(weekType)) {
	case WeekOdd:
		return WeekOdd
	case WeekEven:
		return WeekEven
	default:
		return WeekAll
	}
}

// sameTeacher сравнивает ФИО без учёта регистра и лишних пробелов.
func sameTeacher(a, b string) bool {
	return collapseSpaces(a) != "" && strings.EqualFold(collapseSpaces(a), collapseSpaces(b))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (s *Service) notify(group, message string) {
	if s.notifier != nil {
		s.notifier.Notify(group, message)
	}
}
