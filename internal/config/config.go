// internal/config/config.go
package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/planning"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Planning PlanningConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	LogLevel       string
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type AppConfig struct {
	DataDir string
	// SnapshotSource selects where GET routes read the portfolio from:
	// file, postgres or storage.
	SnapshotSource string
	SnapshotFile   string
	SnapshotKey    string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

// StorageConfig points at an S3 compatible bucket.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// PlanningConfig mirrors planning.Config so it can be set from the environment.
type PlanningConfig struct {
	ServiceLevelZ                float64
	PeriodLengthDays             int
	EvaluationWindow             int
	ABCPolicy                    string
	ABCHighThreshold             float64
	ABCLowThreshold              float64
	ABCParetoA                   float64
	ABCParetoB                   float64
	XYZStableCV                  float64
	XYZVariableCV                float64
	ExpiryPolicy                 string
	ExpiryRiskDays               int
	SupplierRiskCriticalFraction float64
	TopNStockoutAlerts           int
	TopNExpiryAlerts             int
	Workers                      int
}

var (
	once     sync.Once
	instance *Config
)

// Load reads .env and the process environment once and returns the shared config.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		SetDefaults(v)
		v.AutomaticEnv()

		instance = FromViper(v)

		if err := ensureDir(instance.App.DataDir); err != nil {
			log.Fatal().Err(err).Str("dir", instance.App.DataDir).Msg("failed to create data directory")
		}
	})

	return instance
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "planner")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)

	v.SetDefault("APP_DATA_DIR", "./data")
	v.SetDefault("APP_SNAPSHOT_SOURCE", "file")
	v.SetDefault("APP_SNAPSHOT_FILE", "./data/snapshot.json")
	v.SetDefault("APP_SNAPSHOT_KEY", "snapshots/latest.json")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 300)

	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "planner")
	v.SetDefault("STORAGE_REGION", "")
	v.SetDefault("STORAGE_USE_SSL", true)

	defaults := planning.DefaultConfig()
	v.SetDefault("PLANNING_SERVICE_LEVEL_Z", defaults.ServiceLevelZ)
	v.SetDefault("PLANNING_PERIOD_LENGTH_DAYS", defaults.PeriodLengthDays)
	v.SetDefault("PLANNING_EVALUATION_WINDOW", defaults.EvaluationWindow)
	v.SetDefault("PLANNING_ABC_POLICY", defaults.ABCPolicy)
	v.SetDefault("PLANNING_ABC_HIGH_THRESHOLD", defaults.ABCHighThreshold)
	v.SetDefault("PLANNING_ABC_LOW_THRESHOLD", defaults.ABCLowThreshold)
	v.SetDefault("PLANNING_ABC_PARETO_A", defaults.ABCParetoA)
	v.SetDefault("PLANNING_ABC_PARETO_B", defaults.ABCParetoB)
	v.SetDefault("PLANNING_XYZ_STABLE_CV", defaults.XYZStableCV)
	v.SetDefault("PLANNING_XYZ_VARIABLE_CV", defaults.XYZVariableCV)
	v.SetDefault("PLANNING_EXPIRY_POLICY", defaults.ExpiryPolicy)
	v.SetDefault("PLANNING_EXPIRY_RISK_DAYS", defaults.ExpiryRiskDays)
	v.SetDefault("PLANNING_SUPPLIER_RISK_CRITICAL_FRACTION", defaults.SupplierRiskCriticalFraction)
	v.SetDefault("PLANNING_TOP_N_STOCKOUT_ALERTS", defaults.TopNStockoutAlerts)
	v.SetDefault("PLANNING_TOP_N_EXPIRY_ALERTS", defaults.TopNExpiryAlerts)
	v.SetDefault("PLANNING_WORKERS", defaults.Workers)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			LogLevel:       v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt("DB_MAX_CONNS"),
		},
		App: AppConfig{
			DataDir:        v.GetString("APP_DATA_DIR"),
			SnapshotSource: v.GetString("APP_SNAPSHOT_SOURCE"),
			SnapshotFile:   v.GetString("APP_SNAPSHOT_FILE"),
			SnapshotKey:    v.GetString("APP_SNAPSHOT_KEY"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTLSeconds:    v.GetInt("CACHE_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
		},
		Planning: PlanningConfig{
			ServiceLevelZ:                v.GetFloat64("PLANNING_SERVICE_LEVEL_Z"),
			PeriodLengthDays:             v.GetInt("PLANNING_PERIOD_LENGTH_DAYS"),
			EvaluationWindow:             v.GetInt("PLANNING_EVALUATION_WINDOW"),
			ABCPolicy:                    v.GetString("PLANNING_ABC_POLICY"),
			ABCHighThreshold:             v.GetFloat64("PLANNING_ABC_HIGH_THRESHOLD"),
			ABCLowThreshold:              v.GetFloat64("PLANNING_ABC_LOW_THRESHOLD"),
			ABCParetoA:                   v.GetFloat64("PLANNING_ABC_PARETO_A"),
			ABCParetoB:                   v.GetFloat64("PLANNING_ABC_PARETO_B"),
			XYZStableCV:                  v.GetFloat64("PLANNING_XYZ_STABLE_CV"),
			XYZVariableCV:                v.GetFloat64("PLANNING_XYZ_VARIABLE_CV"),
			ExpiryPolicy:                 v.GetString("PLANNING_EXPIRY_POLICY"),
			ExpiryRiskDays:               v.GetInt("PLANNING_EXPIRY_RISK_DAYS"),
			SupplierRiskCriticalFraction: v.GetFloat64("PLANNING_SUPPLIER_RISK_CRITICAL_FRACTION"),
			TopNStockoutAlerts:           v.GetInt("PLANNING_TOP_N_STOCKOUT_ALERTS"),
			TopNExpiryAlerts:             v.GetInt("PLANNING_TOP_N_EXPIRY_ALERTS"),
			Workers:                      v.GetInt("PLANNING_WORKERS"),
		},
	}
}

// PlanningConfig converts the planning section into engine configuration.
// Range checks happen in planning.Config.Validate.
func (c *Config) PlanningConfig() planning.Config {
	p := c.Planning
	return planning.Config{
		ServiceLevelZ:                p.ServiceLevelZ,
		PeriodLengthDays:             p.PeriodLengthDays,
		EvaluationWindow:             p.EvaluationWindow,
		ABCPolicy:                    p.ABCPolicy,
		ABCHighThreshold:             p.ABCHighThreshold,
		ABCLowThreshold:              p.ABCLowThreshold,
		ABCParetoA:                   p.ABCParetoA,
		ABCParetoB:                   p.ABCParetoB,
		XYZStableCV:                  p.XYZStableCV,
		XYZVariableCV:                p.XYZVariableCV,
		ExpiryPolicy:                 p.ExpiryPolicy,
		ExpiryRiskDays:               p.ExpiryRiskDays,
		SupplierRiskCriticalFraction: p.SupplierRiskCriticalFraction,
		TopNStockoutAlerts:           p.TopNStockoutAlerts,
		TopNExpiryAlerts:             p.TopNExpiryAlerts,
		Workers:                      p.Workers,
	}
}

func ensureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
