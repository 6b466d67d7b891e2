package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "schedule_api/docs"
	"schedule_api/internal/auth"
	"schedule_api/internal/config"
	"schedule_api/internal/handlers"
	"schedule_api/internal/models"
	"schedule_api/internal/schedule"
	"schedule_api/internal/storage"
	"schedule_api/internal/tasks"
	"schedule_api/internal/ws"
)

// @Title						Расписание университета
// @Description				Итоговое расписание групп и преподавателей: базовое расписание + еженедельные и разовые правки
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		if err := godotenv.Load(); err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	cfg := config.Load()

	db, err := storage.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal("Ошибка подключения к базе данных: ", err.Error())
	}
	fmt.Println("Подключение к базе данных успешно!")

	if err := db.AutoMigrate(&models.User{}, &models.WeekdaySchedule{}, &models.WeeklyEdit{}, &models.OnceEdit{}); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	redisClient := storage.ConnectRedis(cfg)

	hub := ws.NewHub()
	go hub.Run()

	repo := schedule.NewRepo(db)
	svc := schedule.NewService(repo, hub, cfg.OddWeekAnchor, cfg.RequestTimeout)

	authAPI := auth.New(db, cfg)
	handler := handlers.NewHandler(svc, redisClient)

	tasks.InitScheduler(db)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", handler.Healthz)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", authAPI.Login)
		authGroup.POST("/register", authAPI.Register)
		authGroup.POST("/refresh", authAPI.RefreshToken)
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/groups", handler.GetGroups)
		apiGroup.GET("/schedule", handler.GetSchedule)
		apiGroup.GET("/schedule/teacher", handler.GetTeacherSchedule)
		apiGroup.GET("/schedule/ws", hub.ScheduleWebSocketHandler)
		apiGroup.GET("/week", handler.GetWeekOverview)
	}

	edits := r.Group("/api/edits", authAPI.Middleware(), auth.RequireAdmin())
	{
		edits.POST("/once", handler.UpsertOnceEdit)
		edits.POST("/weekly", handler.UpsertWeeklyEdit)
		edits.DELETE("/once", handler.DeleteOnceEditsForDay)
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}
