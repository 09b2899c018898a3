package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config captures all options required for one estimation run.
type Config struct {
	Mailboxes          []string
	AgeLimitDays       int
	Server             string
	Username           string
	Password           string
	ReportPath         string
	LogLevel           string
	LogDir             string
	PageSize           int
	Timeout            time.Duration
	InsecureSkipVerify bool
	ContinueOnError    bool
}

// fileConfig mirrors the optional YAML settings file. File values only fill
// in flags the user did not set on the command line.
type fileConfig struct {
	Server             string `yaml:"server"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	Report             string `yaml:"report"`
	AgeLimit           int    `yaml:"age_limit"`
	LogLevel           string `yaml:"log_level"`
	LogDir             string `yaml:"log_dir"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	ContinueOnError    bool   `yaml:"continue_on_error"`
}

// RegisterFlags attaches all CLI flags to the provided command. Flags are
// persistent so subcommands share the same surface.
func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("server", "", "Exchange server FQDN; when empty the endpoint is autodiscovered per mailbox")
	flags.String("username", "", "Account used to authenticate (impersonates each target mailbox)")
	flags.String("password", "", "Password for the account (falls back to EWS_PASS env var)")
	flags.String("report", "", "File to append per-mailbox results to")
	flags.Int("age-limit", 0, "Count only items created at least this many days ago (0 = count everything)")
	flags.Int("page-size", 1000, "Entries requested per folder/item page")
	flags.Duration("timeout", 60*time.Second, "HTTP request timeout")
	flags.Bool("insecure-skip-verify", false, "Skip TLS certificate verification (not recommended)")
	flags.Bool("continue-on-error", false, "Record a failed mailbox and keep processing the rest instead of aborting the batch")
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for the per-run log file")
	flags.String("config", "", "Optional YAML file with default settings")
}

// LoadConfig converts the parsed Cobra flags and positional mailbox
// arguments into a Config struct with validation.
func LoadConfig(cmd *cobra.Command, args []string) (Config, error) {
	flags := cmd.Flags()

	server, err := flags.GetString("server")
	if err != nil {
		return Config{}, err
	}
	username, err := flags.GetString("username")
	if err != nil {
		return Config{}, err
	}
	password, err := flags.GetString("password")
	if err != nil {
		return Config{}, err
	}
	reportPath, err := flags.GetString("report")
	if err != nil {
		return Config{}, err
	}
	ageLimit, err := flags.GetInt("age-limit")
	if err != nil {
		return Config{}, err
	}
	pageSize, err := flags.GetInt("page-size")
	if err != nil {
		return Config{}, err
	}
	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		return Config{}, err
	}
	insecureSkipVerify, err := flags.GetBool("insecure-skip-verify")
	if err != nil {
		return Config{}, err
	}
	continueOnError, err := flags.GetBool("continue-on-error")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}
	configPath, err := flags.GetString("config")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Mailboxes:          args,
		AgeLimitDays:       ageLimit,
		Server:             server,
		Username:           username,
		Password:           password,
		ReportPath:         reportPath,
		LogLevel:           strings.ToLower(logLevel),
		LogDir:             logDir,
		PageSize:           pageSize,
		Timeout:            timeout,
		InsecureSkipVerify: insecureSkipVerify,
		ContinueOnError:    continueOnError,
	}

	if configPath != "" {
		fileCfg, err := loadFile(configPath)
		if err != nil {
			return Config{}, err
		}
		applyFileDefaults(&cfg, fileCfg, cmd)
	}

	if cfg.Password == "" {
		cfg.Password = os.Getenv("EWS_PASS")
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func applyFileDefaults(cfg *Config, fc fileConfig, cmd *cobra.Command) {
	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}

	if fc.Server != "" && !changed("server") {
		cfg.Server = fc.Server
	}
	if fc.Username != "" && !changed("username") {
		cfg.Username = fc.Username
	}
	if fc.Password != "" && !changed("password") {
		cfg.Password = fc.Password
	}
	if fc.Report != "" && !changed("report") {
		cfg.ReportPath = fc.Report
	}
	if fc.AgeLimit != 0 && !changed("age-limit") {
		cfg.AgeLimitDays = fc.AgeLimit
	}
	if fc.LogLevel != "" && !changed("log-level") {
		cfg.LogLevel = strings.ToLower(fc.LogLevel)
	}
	if fc.LogDir != "" && !changed("log-dir") {
		cfg.LogDir = fc.LogDir
	}
	if fc.InsecureSkipVerify && !changed("insecure-skip-verify") {
		cfg.InsecureSkipVerify = true
	}
	if fc.ContinueOnError && !changed("continue-on-error") {
		cfg.ContinueOnError = true
	}
}

func validateConfig(cfg Config) error {
	if len(cfg.Mailboxes) == 0 {
		return fmt.Errorf("at least one mailbox address is required")
	}
	for _, mailbox := range cfg.Mailboxes {
		if strings.TrimSpace(mailbox) == "" {
			return fmt.Errorf("mailbox address must not be empty")
		}
		if cfg.Server == "" && !strings.Contains(mailbox, "@") {
			return fmt.Errorf("mailbox %q has no domain; autodiscover needs an SMTP address or use --server", mailbox)
		}
	}
	if cfg.Username == "" {
		return fmt.Errorf("--username is required")
	}
	if cfg.Password == "" {
		return fmt.Errorf("password must be provided via --password, the config file or the EWS_PASS env var")
	}
	if cfg.AgeLimitDays < 0 {
		return fmt.Errorf("--age-limit must not be negative")
	}
	if cfg.PageSize <= 0 {
		return fmt.Errorf("--page-size must be positive")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("--timeout must be positive")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}

// EndpointURL returns the EWS endpoint derived from the explicit server
// setting, or "" when the endpoint must be autodiscovered per mailbox.
func (c Config) EndpointURL() string {
	if c.Server == "" {
		return ""
	}
	if strings.Contains(c.Server, "://") {
		return c.Server
	}
	return "https://" + c.Server + "/EWS/Exchange.asmx"
}
