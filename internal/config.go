package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/filmoteka/internal/catalog"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Source kinds.
const (
	SourceSheets = "sheets"
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app" toml:"app"`
	Source SourceConfig      `yaml:"source" toml:"source"`
	Query  QueryConfig       `yaml:"query" toml:"query"`
	Auth   AuthConfig        `yaml:"auth" toml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if err := c.Query.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SourceConfig selects and locates the movie store.
//
// Kind is one of:
//   - "sheets": a Google Sheets worksheet, reached with a service account.
//   - "csv": a local CSV file, created with a header when missing.
//   - "sqlite": a movies table in a local SQLite database.
type SourceConfig struct {
	Kind            string `yaml:"kind" toml:"kind"`
	SheetURL        string `yaml:"sheet_url" toml:"sheet_url"`
	SheetName       string `yaml:"sheet_name" toml:"sheet_name"`
	CredentialsFile string `yaml:"credentials_file" toml:"credentials_file"`
	// CredentialsJSON is an inline service account key; it wins over CredentialsFile.
	CredentialsJSON string `yaml:"credentials_json" toml:"credentials_json"`
	CSVPath         string `yaml:"csv_path" toml:"csv_path"`
	SQLitePath      string `yaml:"sqlite_path" toml:"sqlite_path"`
	// HeaderOffset maps a data row index to its physical row number.
	HeaderOffset  int  `yaml:"header_offset" toml:"header_offset"`
	IDColumn      bool `yaml:"id_column" toml:"id_column"`
	RatePerMinute int  `yaml:"rate_per_minute" toml:"rate_per_minute"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Kind, validation.Required, validation.In(SourceSheets, SourceCSV, SourceSQLite)),
		validation.Field(&c.SheetURL, validation.When(c.Kind == SourceSheets, validation.Required)),
		validation.Field(&c.SheetName, validation.When(c.Kind == SourceSheets, validation.Required)),
		validation.Field(&c.CSVPath, validation.When(c.Kind == SourceCSV, validation.Required)),
		validation.Field(&c.SQLitePath, validation.When(c.Kind == SourceSQLite, validation.Required)),
		validation.Field(&c.HeaderOffset, validation.Min(2)),
		validation.Field(&c.RatePerMinute, validation.Min(0)),
	)
}

// QueryConfig holds filter defaults.
type QueryConfig struct {
	// YearMode is how a single year parameter is read: "exact" or "range".
	YearMode string `yaml:"year_mode" toml:"year_mode"`
}

// Validate validates the query configuration.
func (c *QueryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.YearMode, validation.In("exact", "range", "any")),
	)
}

// Mode returns the parsed year mode.
func (c *QueryConfig) Mode() catalog.YearMode {
	m, err := catalog.ParseYearMode(c.YearMode)
	if err != nil {
		return catalog.YearExact
	}
	return m
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Source: SourceConfig{
			Kind:          SourceCSV,
			SheetName:     "filmovi",
			CSVPath:       "./filmovi.csv",
			SQLitePath:    "./filmoteka.db",
			HeaderOffset:  catalog.DefaultHeaderOffset,
			RatePerMinute: 60,
		},
		Query: QueryConfig{
			YearMode: "exact",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
