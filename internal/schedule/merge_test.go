package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedule_api/internal/models"
)

func strPtr(s string) *string { return &s }

func baseRow(pair int, subject, teacher, room string) models.WeekdaySchedule {
	return models.WeekdaySchedule{
		ID:         uint(100 + pair),
		GroupName:  "ИС-21",
		Weekday:    1,
		PairNumber: pair,
		TimeStart:  "09:00",
		TimeEnd:    "10:30",
		Subject:    subject,
		Teacher:    teacher,
		Room:       room,
		WeekType:   WeekAll,
	}
}

func TestMergePrecedenceOnceBeatsWeeklyBeatsBase(t *testing.T) {
	base := []models.WeekdaySchedule{baseRow(3, "Математика", "Иванов", "101")}
	weekly := []models.WeeklyEdit{{
		GroupName: "ИС-21", DayOfWeek: 1, PairNumber: 3, WeekType: WeekAll,
		Subject: strPtr("Физика"),
	}}
	once := []models.OnceEdit{{
		GroupName: "ИС-21", PairNumber: 3,
		Subject: strPtr("Химия"),
	}}

	result := mergeTiers("ИС-21", 1, base, weekly, once)
	require.Len(t, result, 1)
	assert.Equal(t, "Химия", result[0].Subject)
}

func TestMergePartialOverrideKeepsOtherFields(t *testing.T) {
	base := []models.WeekdaySchedule{baseRow(2, "Математика", "Иванов", "101")}
	weekly := []models.WeeklyEdit{{
		GroupName: "ИС-21", DayOfWeek: 1, PairNumber: 2, WeekType: WeekAll,
		Room: strPtr("204"),
	}}

	result := mergeTiers("ИС-21", 1, base, weekly, nil)
	require.Len(t, result, 1)
	assert.Equal(t, "Математика", result[0].Subject)
	assert.Equal(t, "Иванов", result[0].Teacher)
	assert.Equal(t, "204", result[0].Room)
	assert.Equal(t, "09:00", result[0].TimeStart)
}

func TestMergeNilAndEmptyFieldsAreNoOp(t *testing.T) {
	base := []models.WeekdaySchedule{baseRow(1, "Математика", "Иванов", "101")}
	weekly := []models.WeeklyEdit{{
		GroupName: "ИС-21", DayOfWeek: 1, PairNumber: 1, WeekType: WeekAll,
		Subject: strPtr(""), // пустая строка — тоже «оставить как есть»
		Teacher: nil,
	}}

	result := mergeTiers("ИС-21", 1, base, weekly, nil)
	require.Len(t, result, 1)
	assert.Equal(t, "Математика", result[0].Subject)
	assert.Equal(t, "Иванов", result[0].Teacher)
}

func TestMergeDeletedClearsFieldsButKeepsBaseTimes(t *testing.T) {
	base := []models.WeekdaySchedule{baseRow(4, "Математика", "Иванов", "101")}
	once := []models.OnceEdit{{
		GroupName: "ИС-21", PairNumber: 4, Deleted: true,
	}}

	result := mergeTiers("ИС-21", 1, base, nil, once)
	require.Len(t, result, 1)
	assert.Empty(t, result[0].Subject)
	assert.Empty(t, result[0].Teacher)
	assert.Empty(t, result[0].Room)
	assert.Equal(t, "09:00", result[0].TimeStart)
	assert.Equal(t, "10:30", result[0].TimeEnd)
}

func TestMergeDeletedWithExplicitTimes(t *testing.T) {
	base := []models.WeekdaySchedule{baseRow(4, "Математика", "Иванов", "101")}
	once := []models.OnceEdit{{
		GroupName: "ИС-21", PairNumber: 4, Deleted: true,
		TimeStart: strPtr("08:00"), TimeEnd: strPtr("09:30"),
	}}

	result := mergeTiers("ИС-21", 1, base, nil, once)
	require.Len(t, result, 1)
	assert.Empty(t, result[0].Subject)
	assert.Equal(t, "08:00", result[0].TimeStart)
	assert.Equal(t, "09:30", result[0].TimeEnd)
}

func TestMergeSynthesizesSlotWithoutBaseRow(t *testing.T) {
	once := []models.OnceEdit{{
		GroupName: "ИС-21", PairNumber: 5,
		Subject: strPtr("Консультация"), Teacher: strPtr("Петров"),
		TimeStart: strPtr("16:00"), TimeEnd: strPtr("17:30"),
	}}

	result := mergeTiers("ИС-21", 1, nil, nil, once)
	require.Len(t, result, 1)
	assert.Equal(t, uint(0), result[0].ID)
	assert.Equal(t, "ИС-21", result[0].GroupName)
	assert.Equal(t, 1, result[0].Weekday)
	assert.Equal(t, 5, result[0].PairNumber)
	assert.Equal(t, "Консультация", result[0].Subject)
	assert.Equal(t, WeekAll, result[0].WeekType)
}

func TestMergeOrderedAndDeduplicated(t *testing.T) {
	base := []models.WeekdaySchedule{
		baseRow(3, "Математика", "Иванов", "101"),
		baseRow(1, "Физика", "Сидоров", "102"),
	}
	weekly := []models.WeeklyEdit{
		{GroupName: "ИС-21", DayOfWeek: 1, PairNumber: 3, WeekType: WeekAll, Room: strPtr("204")},
		{GroupName: "ИС-21", DayOfWeek: 1, PairNumber: 2, WeekType: WeekAll, Subject: strPtr("Химия")},
	}

	result := mergeTiers("ИС-21", 1, base, weekly, nil)
	require.Len(t, result, 3)

	seen := map[int]bool{}
	for i, s := range result {
		assert.False(t, seen[s.PairNumber], "дубликат пары %d", s.PairNumber)
		seen[s.PairNumber] = true
		if i > 0 {
			assert.Less(t, result[i-1].PairNumber, s.PairNumber)
		}
	}
}

func TestMergeDropsNonPositivePairNumbers(t *testing.T) {
	weekly := []models.WeeklyEdit{
		{GroupName: "ИС-21", DayOfWeek: 1, PairNumber: 0, WeekType: WeekAll, Subject: strPtr("Мусор")},
		{GroupName: "ИС-21", DayOfWeek: 1, PairNumber: 2, WeekType: WeekAll, Subject: strPtr("Химия")},
	}

	result := mergeTiers("ИС-21", 1, nil, weekly, nil)
	require.Len(t, result, 1)
	assert.Equal(t, 2, result[0].PairNumber)
}

func TestApplyEditDoesNotMutateInput(t *testing.T) {
	existing := ResolvedSession{PairNumber: 1, Subject: "Математика"}
	applyEdit(existing, editPatch{PairNumber: 1, Subject: strPtr("Физика")})
	assert.Equal(t, "Математика", existing.Subject)
}
