package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyServerPort            = "server.port"
	KeySheetSpreadsheetID    = "sheet.spreadsheet_id"
	KeySheetName             = "sheet.sheet_name"
	KeySheetCredentialsFile  = "sheet.credentials_file"
	KeySheetCredentialsJSON  = "sheet.credentials_json"
	KeyStorageDBPath         = "storage.db_path"
	KeyDefaultsPriority      = "defaults.priority"
	KeyDefaultsTechnician    = "defaults.technician"
	KeyDefaultsStatus        = "defaults.status"
	KeyUsers                 = "users"
	EnvGoogleCredentialsJSON = "GOOGLE_CREDENTIALS_JSON"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Sheet    SheetConfig    `mapstructure:"sheet" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Users    []User         `mapstructure:"users" validate:"dive"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

type SheetConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id" validate:"required"`
	SheetName       string `mapstructure:"sheet_name"`
	CredentialsFile string `mapstructure:"credentials_file"`
	CredentialsJSON string `mapstructure:"credentials_json"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path" validate:"required"`
}

// DefaultsConfig holds the values stamped on every submitted request.
type DefaultsConfig struct {
	Priority   string `mapstructure:"priority" validate:"required"`
	Technician string `mapstructure:"technician" validate:"required"`
	Status     string `mapstructure:"status" validate:"required"`
}

// User is a login allowed to use the web form. Technician is the name written
// to and filtered on in the sheet.
type User struct {
	Username   string `mapstructure:"username" validate:"required"`
	Password   string `mapstructure:"password" validate:"required"`
	Technician string `mapstructure:"technician" validate:"required"`
	Admin      bool   `mapstructure:"admin"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# servicedesk configuration
server:
  port: 8080

sheet:
  spreadsheet_id: "replace-with-google-sheet-id"
  sheet_name: "Sheet1"
  # Service account key file. GOOGLE_CREDENTIALS_JSON (env or .env) takes precedence.
  credentials_file: ""

storage:
  db_path: "./servicedesk.db"

defaults:
  priority: "Medium"
  technician: "Abhishek"
  status: "CLOSED"

users:
  - username: "abhishek"
    password: "change-me"
    technician: "Abhishek"
    admin: true
`
}

// User returns the configured login with the given username.
func (c Config) User(username string) (User, bool) {
	key := strings.ToLower(strings.TrimSpace(username))
	for _, user := range c.Users {
		if strings.ToLower(strings.TrimSpace(user.Username)) == key {
			return user, true
		}
	}
	return User{}, false
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateCredentials(cfg.Sheet); err != nil {
		return nil, err
	}
	if err := validateUsers(cfg.Users); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerPort, 8080)
	v.SetDefault(KeySheetName, "Sheet1")
	v.SetDefault(KeySheetCredentialsFile, "")
	v.SetDefault(KeySheetCredentialsJSON, "")
	v.SetDefault(KeyStorageDBPath, "./servicedesk.db")
	v.SetDefault(KeyDefaultsPriority, "Medium")
	v.SetDefault(KeyDefaultsTechnician, "Abhishek")
	v.SetDefault(KeyDefaultsStatus, "CLOSED")
	v.SetDefault(KeyUsers, []map[string]any{})
	_ = v.BindEnv(KeySheetCredentialsJSON, EnvGoogleCredentialsJSON)
}

func validateCredentials(sheet SheetConfig) error {
	if strings.TrimSpace(sheet.CredentialsJSON) == "" && strings.TrimSpace(sheet.CredentialsFile) == "" {
		return fmt.Errorf(
			"validation failed: google credentials missing (set %s or %s)",
			EnvGoogleCredentialsJSON,
			KeySheetCredentialsFile,
		)
	}
	return nil
}

func validateUsers(users []User) error {
	seen := make(map[string]struct{}, len(users))
	for i, user := range users {
		key := strings.ToLower(strings.TrimSpace(user.Username))
		if key == "" {
			return fmt.Errorf("validation failed: users[%d].username is required", i)
		}
		if _, exists := seen[key]; exists {
			return fmt.Errorf("validation failed: duplicate username %q", user.Username)
		}
		seen[key] = struct{}{}
	}
	return nil
}
