package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"billing/internal/logger"
	"billing/internal/money"
	"billing/internal/render"
	"billing/pkg/models"
)

// Company is the letterhead printed on every rendered document.
type Company struct {
	Name      string `mapstructure:"name"`
	Address   string `mapstructure:"address"`
	Phone     string `mapstructure:"phone"`
	GSTIN     string `mapstructure:"gstin"`
	Signatory string `mapstructure:"signatory"`
	LogoPath  string `mapstructure:"logo_path"`
}

// Bank is printed in the account details footer.
type Bank struct {
	Name          string `mapstructure:"name"`
	AccountNumber string `mapstructure:"account_number"`
	IFSC          string `mapstructure:"ifsc"`
	AccountName   string `mapstructure:"account_name"`
}

type Config struct {
	// Document store
	StoreDriver string `mapstructure:"store_driver"` // json or sqlite
	StorePath   string `mapstructure:"store_path"`

	// Letterhead
	Company Company `mapstructure:"company"`
	Bank    Bank    `mapstructure:"bank"`

	// Draft defaults
	DefaultGST   string `mapstructure:"default_gst"`
	DefaultTerms string `mapstructure:"default_terms"`

	// Logging Configuration
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogTimeFormat string `mapstructure:"log_time_format"`
	LogOutput     string `mapstructure:"log_output"`
}

// Load reads billing.yaml (optional) from the working directory or the path in
// BILLING_CONFIG, then applies BILLING_* environment overrides.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BILLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("billing")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store_driver", "json")
	v.SetDefault("store_path", "billing_db.json")

	v.SetDefault("company.name", "SN ASSOCIATES")
	v.SetDefault("company.address", "Chhatarpur, MP")
	v.SetDefault("company.phone", "")
	v.SetDefault("company.gstin", "")
	v.SetDefault("company.signatory", "")
	v.SetDefault("company.logo_path", "Logo.png")

	v.SetDefault("bank.name", "")
	v.SetDefault("bank.account_number", "")
	v.SetDefault("bank.ifsc", "")
	v.SetDefault("bank.account_name", "")

	v.SetDefault("default_gst", money.DefaultGSTKey)
	v.SetDefault("default_terms", models.DefaultTerms)

	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_time_format", "2006-01-02T15:04:05Z07:00")
	v.SetDefault("log_output", "stderr")
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "json", "sqlite":
	default:
		return fmt.Errorf("BILLING_STORE_DRIVER must be json or sqlite, got %q", c.StoreDriver)
	}
	if c.StorePath == "" {
		return fmt.Errorf("BILLING_STORE_PATH is required")
	}
	if !money.IsKnownRate(c.DefaultGST) {
		return fmt.Errorf("BILLING_DEFAULT_GST must be one of %v, got %q", money.GSTKeys(), c.DefaultGST)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// Letterhead returns the business profile printed on rendered documents.
func (c *Config) Letterhead() render.Letterhead {
	return render.Letterhead{
		Name:          c.Company.Name,
		Address:       c.Company.Address,
		Phone:         c.Company.Phone,
		GSTIN:         c.Company.GSTIN,
		Signatory:     c.Company.Signatory,
		LogoPath:      c.Company.LogoPath,
		BankName:      c.Bank.Name,
		AccountNumber: c.Bank.AccountNumber,
		IFSC:          c.Bank.IFSC,
		AccountName:   c.Bank.AccountName,
	}
}
