package tasks

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"schedule_api/internal/models"
)

// Разовые правки старше этого срока уже никому не показываются и только
// замедляют выборки по дате.
const onceEditRetention = 30 * 24 * time.Hour

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler(db *gorm.DB) *cron.Cron {
	c := cron.New(cron.WithSeconds())

	// Задача очистки устаревших разовых правок каждый день в 03:00.
	_, err := c.AddFunc("0 0 3 * * *", func() { CleanOldOnceEdits(db) })
	if err != nil {
		log.Println("Ошибка запуска cron-задачи CleanOldOnceEdits:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}

// CleanOldOnceEdits удаляет разовые правки, дата которых давно прошла.
func CleanOldOnceEdits(db *gorm.DB) {
	threshold := time.Now().Add(-onceEditRetention)
	if err := db.Where("edit_date < ?", threshold).Delete(&models.OnceEdit{}).Error; err != nil {
		log.Println("Ошибка при удалении устаревших разовых правок:", err)
	} else {
		log.Println("Устаревшие разовые правки успешно удалены.")
	}
}
