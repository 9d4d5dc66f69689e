package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Backends del store de memoria.
const (
	MemoryStorePostgres = "postgres"
	MemoryStoreInMemory = "memory"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	DBMaxConns    int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	MemoryStore   string        `env:"MEMORY_STORE" envDefault:"postgres"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	LockTTL       time.Duration `env:"LOCK_TTL" envDefault:"10s"`
	LockWait      time.Duration `env:"LOCK_WAIT" envDefault:"3s"`
	RandomSeed    uint64        `env:"RANDOM_SEED" envDefault:"0"`
	StoreTimeout  time.Duration `env:"STORE_TIMEOUT" envDefault:"2s"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UsePostgres indica si hay base configurada; sin DATABASE_URL todo corre en memoria.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func (c *Config) validate() error {
	switch c.MemoryStore {
	case MemoryStorePostgres, MemoryStoreInMemory:
	default:
		return fmt.Errorf("MEMORY_STORE invalido: %q", c.MemoryStore)
	}
	if c.MemoryStore == MemoryStorePostgres && !c.UsePostgres() {
		// Sin base el store de memoria cae al backend en memoria.
		c.MemoryStore = MemoryStoreInMemory
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL debe ser positivo")
	}
	if c.DBMaxConns <= 0 {
		c.DBMaxConns = 10
	}
	return nil
}
