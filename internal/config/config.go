package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"shiftbot/internal/domain"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// MaxOrgLen ограничение длины кода org, чтобы токены кнопок APPROVE|id|org
// укладывались в лимит платформы.
const MaxOrgLen = 32

type Config struct {
	BotToken string
	Storage  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	HTTPPort string
	OpsToken string

	// Orgs список кодов подразделений через запятую.
	Orgs string
	// Admins администраторы по org: "ER:1,2;ICU:3".
	Admins string

	CorrelationTTL time.Duration
	AlbumTTL       time.Duration
	SweepInterval  time.Duration
	PurgeInterval  time.Duration
	Workers        int

	LogLevel string
	Timezone string
}

func LoadConfig() (Config, error) {

	err := godotenv.Load()

	return Config{
		BotToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
		Storage:        getEnv("STORAGE", StoragePostgres),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "password"),
		DBName:         getEnv("DB_NAME", "shiftbot"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		OpsToken:       getEnv("OPS_TOKEN", ""),
		Orgs:           getEnv("ORGS", ""),
		Admins:         getEnv("ADMINS", ""),
		CorrelationTTL: getDuration("CORRELATION_TTL", 24*time.Hour),
		AlbumTTL:       getDuration("ALBUM_TTL", 24*time.Hour),
		SweepInterval:  getDuration("SWEEP_INTERVAL", 10*time.Minute),
		PurgeInterval:  getDuration("PURGE_INTERVAL", 6*time.Hour),
		Workers:        getInt("WORKERS", 4),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("TIMEZONE", "Europe/Rome"),
	}, err
}

// Validate проверяет обязательные параметры для запуска бота.
func (c Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Storage != StoragePostgres && c.Storage != StorageMemory {
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	admins, err := c.AdminRegistry()
	if err != nil {
		return err
	}
	if len(admins.Orgs()) == 0 {
		return fmt.Errorf("ORGS is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// AdminRegistry разбирает ORGS и ADMINS.
func (c Config) AdminRegistry() (*domain.AdminRegistry, error) {
	byOrg, err := ParseAdmins(c.Orgs, c.Admins)
	if err != nil {
		return nil, err
	}
	return domain.NewAdminRegistry(byOrg), nil
}

// Location возвращает часовой пояс, в котором считается "сегодня".
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ParseAdmins разбирает "ER,ICU" и "ER:1,2;ICU:3" в карту org -> id.
func ParseAdmins(orgs, admins string) (map[domain.Org][]int64, error) {
	result := make(map[domain.Org][]int64)

	for _, org := range strings.Split(orgs, ",") {
		if org = strings.TrimSpace(org); org == "" {
			continue
		}
		if err := validateOrg(org); err != nil {
			return nil, err
		}
		result[domain.Org(org)] = nil
	}

	for _, group := range strings.Split(admins, ";") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		org, ids, ok := strings.Cut(group, ":")
		org = strings.TrimSpace(org)
		if !ok || org == "" {
			return nil, fmt.Errorf("invalid ADMINS entry %q", group)
		}
		if err := validateOrg(org); err != nil {
			return nil, err
		}
		list := result[domain.Org(org)]
		for _, raw := range strings.Split(ids, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid admin id %q for org %s: %w", raw, org, err)
			}
			list = append(list, id)
		}
		result[domain.Org(org)] = list
	}

	return result, nil
}

func validateOrg(org string) error {
	if len(org) > MaxOrgLen || strings.ContainsAny(org, "|:;, ") {
		return fmt.Errorf("invalid org code %q", org)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
