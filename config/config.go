package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appname  string `yaml:"appname" json:"appname"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type MirrorConfig struct {
	Enabled       bool `yaml:"enabled" json:"enabled"`
	ImportOnStart bool `yaml:"import_on_start" json:"import_on_start"`
}

type BackupConfig struct {
	IntervalMinutes int  `yaml:"interval_minutes" json:"interval_minutes"`
	Retention       int  `yaml:"retention" json:"retention"`
	RunOnStart      bool `yaml:"run_on_start" json:"run_on_start"`
}

type MailConfig struct {
	SmtpHost string `yaml:"smtp_host" json:"smtp_host"`
	SmtpPort int    `yaml:"smtp_port" json:"smtp_port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
	To       string `yaml:"to" json:"to"`
}

type WebhookConfig struct {
	Url string `yaml:"url" json:"url"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system" json:"system"`
	Web      WebConfig     `yaml:"web" json:"web"`
	Database DBConfig      `yaml:"database" json:"database"`
	Logger   LogConfig     `yaml:"logger" json:"logger"`
	Mirror   MirrorConfig  `yaml:"mirror" json:"mirror"`
	Backup   BackupConfig  `yaml:"backup" json:"backup"`
	Mail     MailConfig    `yaml:"mail" json:"mail"`
	Webhook  WebhookConfig `yaml:"webhook" json:"webhook"`
}

// LocalStorePath is the bbolt database file under the configured workdir.
func (c *AppConfig) LocalStorePath() string {
	return filepath.Join(c.System.Workdir, "cafedesk.db")
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appname:  "cafedesk",
		Location: "Asia/Riyadh",
		Workdir:  "/var/cafedesk",
		Debug:    true,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1816,
		Secret: "9b6de5cc-cafe-desk-bf97-3e862a1bacc1",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "cafedesk",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  50,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/cafedesk/cafedesk.log",
	},
	Mirror: MirrorConfig{
		Enabled:       true,
		ImportOnStart: true,
	},
	Backup: BackupConfig{
		IntervalMinutes: 60,
		Retention:       24,
		RunOnStart:      true,
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

// LoadConfig reads the YAML configuration file, falling back to defaults,
// then applies environment overrides.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" && fileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err == nil {
			nc := new(AppConfig)
			if yaml.Unmarshal(data, nc) == nil {
				cfg = nc
			}
		}
	}

	setEnvValue("CAFEDESK_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("CAFEDESK_WEB_SECRET", func(v string) { cfg.Web.Secret = v })
	setEnvValue("CAFEDESK_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvValue("CAFEDESK_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("CAFEDESK_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("CAFEDESK_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("CAFEDESK_MAIL_TO", func(v string) { cfg.Mail.To = v })
	setEnvValue("CAFEDESK_WEBHOOK_URL", func(v string) { cfg.Webhook.Url = v })
	return cfg
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
