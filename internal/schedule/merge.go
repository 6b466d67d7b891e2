package schedule

import (
	"sort"

	"schedule_api/internal/models"
)

// ResolvedSession — итоговая пара в расписании на конкретный день после
// наложения правок. Не хранится в базе. ID=0 означает, что пара создана
// правкой и не имеет строки в базовом расписании.
type ResolvedSession struct {
	ID         uint   `json:"id"`
	GroupName  string `json:"group_name"`
	Weekday    int    `json:"weekday"`
	PairNumber int    `json:"pair_number"`
	TimeStart  string `json:"time_start"`
	TimeEnd    string `json:"time_end"`
	Subject    string `json:"subject"`
	Teacher    string `json:"teacher"`
	Room       string `json:"room"`
	WeekType   string `json:"week_type"`
}

// editPatch — общий вид правки для наложения, к нему приводятся и
// еженедельные, и разовые правки.
type editPatch struct {
	PairNumber int
	Subject    *string
	Teacher    *string
	Room       *string
	TimeStart  *string
	TimeEnd    *string
	Deleted    bool
}

func weeklyPatch(e models.WeeklyEdit) editPatch {
	return editPatch{
		PairNumber: e.PairNumber,
		Subject:    e.Subject,
		Teacher:    e.Teacher,
		Room:       e.Room,
		TimeStart:  e.TimeStart,
		TimeEnd:    e.TimeEnd,
		Deleted:    e.Deleted,
	}
}

func oncePatch(e models.OnceEdit) editPatch {
	return editPatch{
		PairNumber: e.PairNumber,
		Subject:    e.Subject,
		Teacher:    e.Teacher,
		Room:       e.Room,
		TimeStart:  e.TimeStart,
		TimeEnd:    e.TimeEnd,
		Deleted:    e.Deleted,
	}
}

// mergeTiers складывает три слоя в расписание одного дня. Порядок наложения
// фиксированный: сначала базовые строки, поверх них еженедельные правки,
// последними разовые — поэтому разовая правка всегда побеждает.
// На каждый номер пары в результате не больше одной записи; записи с
// номером пары <= 0 отбрасываются; результат отсортирован по номеру пары.
func mergeTiers(group string, weekday int, base []models.WeekdaySchedule, weekly []models.WeeklyEdit, once []models.OnceEdit) []ResolvedSession {
	slots := make(map[int]ResolvedSession, len(base))
	for _, b := range base {
		slots[b.PairNumber] = ResolvedSession{
			ID:         b.ID,
			GroupName:  b.GroupName,
			Weekday:    b.Weekday,
			PairNumber: b.PairNumber,
			TimeStart:  b.TimeStart,
			TimeEnd:    b.TimeEnd,
			Subject:    b.Subject,
			Teacher:    b.Teacher,
			Room:       b.Room,
			WeekType:   b.WeekType,
		}
	}

	for _, e := range weekly {
		overlay(slots, group, weekday, weeklyPatch(e))
	}
	for _, e := range once {
		overlay(slots, group, weekday, oncePatch(e))
	}

	result := make([]ResolvedSession, 0, len(slots))
	for _, s := range slots {
		if s.PairNumber > 0 {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PairNumber < result[j].PairNumber
	})
	return result
}

// overlay накладывает одну правку на слот. Если слота ещё нет, создаётся
// заготовка с ID=0 — так разовая правка может добавить пару, которой нет
// в базовом расписании.
func overlay(slots map[int]ResolvedSession, group string, weekday int, p editPatch) {
	existing, ok := slots[p.PairNumber]
	if !ok {
		existing = ResolvedSession{
			GroupName:  group,
			Weekday:    weekday,
			PairNumber: p.PairNumber,
			WeekType:   WeekAll,
		}
	}
	slots[p.PairNumber] = applyEdit(existing, p)
}

// applyEdit возвращает новую запись, не меняя исходную. Для отменённой пары
// предмет, преподаватель и аудитория очищаются, но явно заданное время
// применяется — «отменена, было 9:00–10:30». Для обычной правки
// перезаписываются только заполненные поля: nil и пустая строка означают
// «оставить как есть».
func applyEdit(existing ResolvedSession, p editPatch) ResolvedSession {
	if p.Deleted {
		existing.Subject = ""
		existing.Teacher = ""
		existing.Room = ""
		if v := deref(p.TimeStart); v != "" {
			existing.TimeStart = v
		}
		if v := deref(p.TimeEnd); v != "" {
			existing.TimeEnd = v
		}
		return existing
	}

	if v := deref(p.Subject); v != "" {
		existing.Subject = v
	}
	if v := deref(p.Teacher); v != "" {
		existing.Teacher = v
	}
	if v := deref(p.Room); v != "" {
		existing.Room = v
	}
	if v := deref(p.TimeStart); v != "" {
		existing.TimeStart = v
	}
	if v := deref(p.TimeEnd); v != "" {
		existing.TimeEnd = v
	}
	return existing
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
