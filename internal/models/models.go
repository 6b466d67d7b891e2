package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null"` // Логин (для преподавателей импортируется из stud_8)
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:student"` // student | teacher | admin
	FullName     string
}

// WeekdaySchedule — базовое расписание, заливается целиком импортом из Excel.
// Серверная часть его только читает.
type WeekdaySchedule struct {
	ID         uint   `gorm:"primaryKey"`
	GroupName  string `gorm:"index;not null"` // Название группы как в импортированном файле
	Weekday    int    `gorm:"index;not null"` // 1=Пн .. 7=Вс
	PairNumber int    `gorm:"not null"`       // Номер пары в течение дня
	TimeStart  string // "HH:MM"
	TimeEnd    string // "HH:MM"
	Subject    string
	Teacher    string
	Room       string
	WeekType   string `gorm:"not null;default:all"` // all | odd | even
}

// WeeklyEdit — повторяющаяся правка расписания, действует каждую подходящую
// по чётности неделю. Nil-поле означает «оставить как есть».
type WeeklyEdit struct {
	ID         uint   `gorm:"primaryKey"`
	GroupName  string `gorm:"index;not null"`
	DayOfWeek  int    `gorm:"not null"` // 1=Пн .. 7=Вс
	PairNumber int    `gorm:"not null"` // 1..20
	WeekType   string `gorm:"not null;default:all"` // Область действия правки: all | odd | even
	Subject    *string
	Teacher    *string
	Room       *string
	TimeStart  *string
	TimeEnd    *string
	Deleted    bool `gorm:"not null;default:false"` // Пара отменена (поля очищаются)
}

// OnceEdit — разовая правка на конкретную дату.
type OnceEdit struct {
	ID         uint      `gorm:"primaryKey"`
	GroupName  string    `gorm:"index;not null"`
	EditDate   time.Time `gorm:"type:date;index;not null"`
	PairNumber int       `gorm:"not null"`
	Subject    *string
	Teacher    *string
	Room       *string
	TimeStart  *string
	TimeEnd    *string
	Deleted    bool `gorm:"not null;default:false"`
}
