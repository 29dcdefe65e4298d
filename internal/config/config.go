package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the application.
// It includes the environment type (local, development, production), the telegram
// bot settings, the backend contract, the database selectors offered to users,
// and storage settings. An empty RedisAddr keeps sessions in memory.
type Config struct {
	Env             string `validate:"required"`
	Token           string
	PollerTimeout   time.Duration `validate:"gt=0"`
	Backend         BackendConfig
	Databases       []string `validate:"min=1,dive,required"`
	DefaultDatabase string   `validate:"required"`
	Database        PostgresConfig
	RedisAddr       string
	SessionTTL      time.Duration `validate:"gt=0"`
	MonitoringPort  int           `validate:"gt=0,lt=65536"`
}

// BackendConfig describes the HTTP backend that owns the records.
type BackendConfig struct {
	BaseURL            string        `validate:"required,url"` // BaseURL is the scheme://host:port of the backend
	Timeout            time.Duration `validate:"gt=0"`         // Timeout bounds a single backend request
	IDParam            string        `validate:"required"`     // IDParam is the record identifier query parameter
	DatabaseParam      string        `validate:"required"`     // DatabaseParam is the database selector query parameter
	EmployeesPath      string        `validate:"required"`     // EmployeesPath is the employee resource
	EmployeeStatusPath string        `validate:"required"`     // EmployeeStatusPath is the employee activation sub-resource
	SalespeoplePath    string        `validate:"required"`     // SalespeoplePath is the salesperson resource
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// envBindings maps configuration keys to the environment variables overriding them.
var envBindings = map[string]string{
	"env":                          "NOMINA_ENV",
	"telegram.token":               "NOMINA_TELEGRAM_TOKEN",
	"telegram.timeout":             "NOMINA_TELEGRAM_TIMEOUT",
	"backend.base_url":             "NOMINA_BACKEND_URL",
	"backend.timeout":              "NOMINA_BACKEND_TIMEOUT",
	"backend.id_param":             "NOMINA_BACKEND_ID_PARAM",
	"backend.database_param":       "NOMINA_BACKEND_DATABASE_PARAM",
	"backend.employees_path":       "NOMINA_BACKEND_EMPLOYEES_PATH",
	"backend.employee_status_path": "NOMINA_BACKEND_EMPLOYEE_STATUS_PATH",
	"backend.salespeople_path":     "NOMINA_BACKEND_SALESPEOPLE_PATH",
	"databases":                    "NOMINA_DATABASES",
	"default_database":             "NOMINA_DEFAULT_DATABASE",
	"session_ttl":                  "NOMINA_SESSION_TTL",
	"monitoring_port":              "NOMINA_MONITORING_PORT",
	"postgres.host":                "DB_HOST",
	"postgres.port":                "DB_PORT",
	"postgres.user":                "DB_USERNAME",
	"postgres.password":            "DB_PASSWORD",
	"postgres.db_name":             "DB_NAME",
	"redis_addr":                   "REDIS_ADDR",
}

// MustLoad loads the configuration and returns a Config struct.
// Values come from defaults, then the YAML file named by CONFIG_PATH (optional),
// then environment variables (a .env file is loaded first when present).
func MustLoad() *Config {
	_ = godotenv.Load()

	vpr := viper.New()
	setDefaults(vpr)

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		// check if file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			panic("config file does not exist: " + configPath)
		}

		vpr.SetConfigFile(configPath)
		if err := vpr.ReadInConfig(); err != nil {
			panic("config error: " + err.Error())
		}
	}

	for key, env := range envBindings {
		_ = vpr.BindEnv(key, env)
	}

	cfg := &Config{
		Env:           vpr.GetString("env"),
		Token:         vpr.GetString("telegram.token"),
		PollerTimeout: vpr.GetDuration("telegram.timeout"),
		Backend: BackendConfig{
			BaseURL:            vpr.GetString("backend.base_url"),
			Timeout:            vpr.GetDuration("backend.timeout"),
			IDParam:            vpr.GetString("backend.id_param"),
			DatabaseParam:      vpr.GetString("backend.database_param"),
			EmployeesPath:      vpr.GetString("backend.employees_path"),
			EmployeeStatusPath: vpr.GetString("backend.employee_status_path"),
			SalespeoplePath:    vpr.GetString("backend.salespeople_path"),
		},
		Databases:       stringList(vpr, "databases"),
		DefaultDatabase: vpr.GetString("default_database"),
		Database: PostgresConfig{
			Host:     vpr.GetString("postgres.host"),
			Port:     vpr.GetString("postgres.port"),
			User:     vpr.GetString("postgres.user"),
			Password: vpr.GetString("postgres.password"),
			Name:     vpr.GetString("postgres.db_name"),
		},
		RedisAddr:      vpr.GetString("redis_addr"),
		SessionTTL:     vpr.GetDuration("session_ttl"),
		MonitoringPort: vpr.GetInt("monitoring_port"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		panic("invalid configuration: " + err.Error())
	}

	return cfg
}

func setDefaults(vpr *viper.Viper) {
	const (
		defPollerTimeout  = 10 * time.Second
		defBackendTimeout = 15 * time.Second
		defSessionTTL     = 24 * time.Hour
		defMonitoringPort = 8080
	)

	vpr.SetDefault("env", "production")
	vpr.SetDefault("telegram.timeout", defPollerTimeout)
	vpr.SetDefault("backend.timeout", defBackendTimeout)
	vpr.SetDefault("backend.id_param", "id")
	vpr.SetDefault("backend.database_param", "DatabaseContext")
	vpr.SetDefault("backend.employees_path", "/api/employees")
	vpr.SetDefault("backend.employee_status_path", "/api/employees/status")
	vpr.SetDefault("backend.salespeople_path", "/api/salespeople")
	vpr.SetDefault("databases", []string{"DEPOFORT", "DEPOSEVN", "DEPOUA"})
	vpr.SetDefault("default_database", "DEPOFORT")
	vpr.SetDefault("postgres.port", "5432")
	vpr.SetDefault("session_ttl", defSessionTTL)
	vpr.SetDefault("monitoring_port", defMonitoringPort)
}

// stringList reads a list that may be a YAML sequence or a comma separated string.
func stringList(vpr *viper.Viper, key string) []string {
	raw, ok := vpr.Get(key).(string)
	if !ok {
		return vpr.GetStringSlice(key)
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
