// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ErrMissingConfig возвращается, когда отсутствуют обязательные настройки
// документного хранилища. Провижининг с такой ошибкой не доходит до
// обращения к хранилищу.
var ErrMissingConfig = errors.New("document store is not configured")

// Config общая структура для хранения настроек
type Config struct {
	Env                     string        `yaml:"env"`
	StorageConnectionString string        `yaml:"storage_connection_string"`
	RabbitMQURL             string        `yaml:"rabbitmq_url"`
	RabbitMQMaxRetries      int           `yaml:"rabbitmq_max_retries" env-default:"5"`
	RabbitMQRetryDelay      time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	DocumentStore           `yaml:"document_store"`
	ProfileDefaults         `yaml:"profile_defaults"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// DocumentStore структура для подключения к документному хранилищу,
// в котором создаются профили пользователей.
type DocumentStore struct {
	Endpoint     string        `yaml:"endpoint"`
	ProjectID    string        `yaml:"project_id"`
	APIKey       string        `yaml:"api_key"`
	DatabaseID   string        `yaml:"database_id"`
	CollectionID string        `yaml:"collection_id"`
	Timeout      time.Duration `yaml:"timeout" env-default:"15s"`
}

// ProfileDefaults структура с дефолтами нового профиля. Значения по
// умолчанию задают пробный период в 14 дней и 100 стартовых кредитов.
type ProfileDefaults struct {
	TrialDurationDays int    `yaml:"trial_duration_days" env-default:"14"`
	InitialCredits    int    `yaml:"initial_credits" env-default:"100"`
	InitialPlan       string `yaml:"initial_plan" env-default:"free"`
	InitialStatus     string `yaml:"initial_status" env-default:"trial"`
}

// Validate проверяет полноту настроек документного хранилища и возвращает
// ErrMissingConfig с перечислением всех отсутствующих значений.
func (d DocumentStore) Validate() error {
	var missing []string
	if d.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if d.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if d.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if d.DatabaseID == "" {
		missing = append(missing, "database_id")
	}
	if d.CollectionID == "" {
		missing = append(missing, "collection_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// MustLoad функция для загрузки конфига, путь берется из переменной CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"RabbitMQURL: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"DocumentStore:\n"+
			"  Endpoint: %s\n"+
			"  ProjectID: %s\n"+
			"  DatabaseID: %s\n"+
			"  CollectionID: %s\n"+
			"ProfileDefaults:\n"+
			"  TrialDurationDays: %d\n"+
			"  InitialCredits: %d\n"+
			"  InitialPlan: %s\n"+
			"  InitialStatus: %s\n",
		c.Env,
		c.StorageConnectionString,
		c.RabbitMQURL,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Endpoint,
		c.ProjectID,
		c.DatabaseID,
		c.CollectionID,
		c.TrialDurationDays,
		c.InitialCredits,
		c.InitialPlan,
		c.InitialStatus,
	)
}
