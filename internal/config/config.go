package config

import (
	"os"
	"strconv"
	"time"
)

// Config собирает все переменные окружения в одном месте; читается один раз
// в main после godotenv и передаётся зависимостям явно.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string

	AccessSecret  string
	RefreshSecret string

	// OddWeekAnchor — понедельник «нечётной» недели (YYYY-MM-DD).
	// Пустое или кривое значение — не ошибка: чётность считается по
	// номеру ISO-недели.
	OddWeekAnchor string

	// RequestTimeout — дедлайн на сборку преподавательского расписания.
	RequestTimeout time.Duration
}

func Load() *Config {
	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "schedule_user"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "schedule_db"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		AccessSecret:   os.Getenv("JWT_ACCESS_SECRET"),
		RefreshSecret:  os.Getenv("JWT_REFRESH_SECRET"),
		OddWeekAnchor:  os.Getenv("ODD_WEEK_ANCHOR"),
		RequestTimeout: getEnvSeconds("REQUEST_TIMEOUT", 5*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
