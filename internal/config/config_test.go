package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/nomina/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("NOMINA_ENV", "local")
	t.Setenv("NOMINA_TELEGRAM_TOKEN", "someTelegramToken")
	t.Setenv("NOMINA_BACKEND_URL", "http://190.220.57.172:5000")
	t.Setenv("NOMINA_DATABASES", "DEPOFORT, DEPOSEVN")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "someTelegramToken", cfg.Token)
	assert.Equal(t, 10*time.Second, cfg.PollerTimeout)
	assert.Equal(t, "http://190.220.57.172:5000", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "id", cfg.Backend.IDParam)
	assert.Equal(t, "DatabaseContext", cfg.Backend.DatabaseParam)
	assert.Equal(t, "/api/employees", cfg.Backend.EmployeesPath)
	assert.Equal(t, "/api/employees/status", cfg.Backend.EmployeeStatusPath)
	assert.Equal(t, "/api/salespeople", cfg.Backend.SalespeoplePath)
	assert.Equal(t, []string{"DEPOFORT", "DEPOSEVN"}, cfg.Databases)
	assert.Equal(t, "DEPOFORT", cfg.DefaultDatabase)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 8080, cfg.MonitoringPort)
}

func TestMustLoad_IntervalError(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("NOMINA_BACKEND_URL", "http://localhost:5000")
	t.Setenv("NOMINA_TELEGRAM_TIMEOUT", "error_value")

	assert.PanicsWithValue(t, "invalid configuration: "+
		"Key: 'Config.PollerTimeout' Error:Field validation for 'PollerTimeout' failed on the 'gt' tag",
		func() {
			config.MustLoad()
		})
}

func TestMustLoad_MissingBackend(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("NOMINA_BACKEND_URL", "")

	assert.PanicsWithValue(t, "invalid configuration: "+
		"Key: 'Config.Backend.BaseURL' Error:Field validation for 'BaseURL' failed on the 'required' tag",
		func() {
			config.MustLoad()
		})
}

func TestMustLoad_FileNotExist(t *testing.T) {
	t.Setenv("CONFIG_PATH", "./invalid/path")

	assert.PanicsWithValue(t, "config file does not exist: ./invalid/path", func() {
		config.MustLoad()
	})
}

func TestMustLoad_ReadError(t *testing.T) {
	filet.File(t, "broken.yaml", "backend: [unclosed")
	defer filet.CleanUp(t)

	t.Setenv("CONFIG_PATH", "broken.yaml")

	defer func() {
		recovered := recover()
		require.NotNil(t, recovered)
		msg, ok := recovered.(string)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(msg, "config error: "), msg)
	}()

	config.MustLoad()
}

func TestMustLoad_FromFile(t *testing.T) {
	configContent := `
---
env: "development"
telegram:
  token: test-token
  timeout: 30s
backend:
  base_url: "http://190.220.57.172:5000"
  database_param: BaseDeDatos
  employees_path: /api/empleados
  employee_status_path: /api/clientes
  salespeople_path: /api/vendedores
databases: [DEPOFORT, DEPOSEVN, DEPOUA]
default_database: DEPOSEVN
postgres:
  host: "localhost"
  user: "pgUser"
  password: "pgPassword"
  db_name: "pgDatabase"
redis_addr: "localhost:6379"
`
	filet.File(t, "conf.yaml", configContent)
	defer filet.CleanUp(t)

	t.Setenv("CONFIG_PATH", "conf.yaml")
	t.Setenv("DB_PASSWORD", "fromEnv")

	cfg := config.MustLoad()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "test-token", cfg.Token)
	assert.Equal(t, 30*time.Second, cfg.PollerTimeout)
	assert.Equal(t, "BaseDeDatos", cfg.Backend.DatabaseParam)
	assert.Equal(t, "/api/empleados", cfg.Backend.EmployeesPath)
	assert.Equal(t, "/api/clientes", cfg.Backend.EmployeeStatusPath)
	assert.Equal(t, "/api/vendedores", cfg.Backend.SalespeoplePath)
	assert.Equal(t, []string{"DEPOFORT", "DEPOSEVN", "DEPOUA"}, cfg.Databases)
	assert.Equal(t, "DEPOSEVN", cfg.DefaultDatabase)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "pgUser", cfg.Database.User)
	assert.Equal(t, "fromEnv", cfg.Database.Password)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}
