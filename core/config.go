package core

import (
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		AppName  string
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		WorkDir  string

		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Supabase SupabaseConfig
	}

	ServerConfig struct {
		Host                 string
		Port                 int
		TokenExpirationDelta time.Duration
		// Timezone is the civil calendar used for date-driven business rules,
		// independent of the server's locale.
		Timezone string
	}

	SupabaseConfig struct {
		URL        string
		ServiceKey string
		Bucket     string
	}
)

func (c ServerConfig) Address() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// NewConfig loads the configuration from defaults, an optional
// config/.env.<env> file and environment variables (in increasing precedence).
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("appName", "Academia")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("frontendBaseURL", "http://localhost:5173")
	v.SetDefault("serverHost", "")
	v.SetDefault("serverPort", 8000)
	v.SetDefault("tokenExpirationDelta", 24*time.Hour)
	v.SetDefault("timezone", "America/Guayaquil")
	v.SetDefault("supabaseBucket", "cronograma-docs")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		AppName:  v.GetString("appName"),
		Env:      env,
		Build:    v.GetString("build"),
		WorkDir:  wd,

		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:                 v.GetString("serverHost"),
			Port:                 v.GetInt("serverPort"),
			TokenExpirationDelta: v.GetDuration("tokenExpirationDelta"),
			Timezone:             v.GetString("timezone"),
		},
		Supabase: SupabaseConfig{
			URL:        strings.TrimRight(v.GetString("supabaseURL"), "/"),
			ServiceKey: v.GetString("supabaseServiceKey"),
			Bucket:     v.GetString("supabaseBucket"),
		},
	}

	if !conf.TestMode && !conf.Debug && (conf.Supabase.URL == "" || conf.Supabase.ServiceKey == "") {
		return nil, errors.New("SUPABASEURL and SUPABASESERVICEKEY must be set")
	}
	return conf, nil
}
