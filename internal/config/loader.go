package config

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultTimeout = 30 * time.Second

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a
// Config. Flag values override config file values.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		Method:      "GET",
		Headers:     map[string]string{},
		Concurrency: 10,
		Duration:    "30s",
		Mode:        ModeAsync,
		Timeout:     defaultTimeout,
		ConfigFile:  configPath,
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	cfg.Target = strings.TrimSpace(cfg.Target)

	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		cfg.Target = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "method"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("method: %w", err)
		}
		if val != "" {
			cfg.Method = val
		}
	}

	if raw, ok := lookupSetting(settings, "headers"); ok {
		hdrs, err := asStringMap(raw)
		if err != nil {
			return fmt.Errorf("headers: %w", err)
		}
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for k, v := range hdrs {
			cfg.Headers[http.CanonicalHeaderKey(k)] = v
		}
	}

	if raw, ok := lookupSetting(settings, "body"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("body: %w", err)
		}
		cfg.Body = val
	}

	if raw, ok := lookupSetting(settings, "multipart"); ok {
		parts, err := parseMultipart(raw)
		if err != nil {
			return fmt.Errorf("multipart: %w", err)
		}
		cfg.Multipart = parts
	}

	if raw, ok := lookupSetting(settings, "scenarios"); ok {
		scenarios, err := parseScenarios(raw)
		if err != nil {
			return fmt.Errorf("scenarios: %w", err)
		}
		cfg.Scenarios = scenarios
	}

	if raw, ok := lookupSetting(settings, "concurrency"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("concurrency: %w", err)
		}
		cfg.Concurrency = val
	}

	if raw, ok := lookupSetting(settings, "duration"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		if strings.TrimSpace(val) != "" {
			cfg.Duration = strings.TrimSpace(val)
		}
	}

	if raw, ok := lookupSetting(settings, "mode"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("mode: %w", err)
		}
		if strings.TrimSpace(val) != "" {
			cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(val)))
		}
	}

	if raw, ok := lookupSetting(settings, "rate"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.Rate = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asGoDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "output"); ok {
		out, err := parseOutput(raw)
		if err != nil {
			return fmt.Errorf("output: %w", err)
		}
		cfg.Output = out
	}

	if raw, ok := lookupSetting(settings, "dashboard"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		cfg.Dashboard = val
	}

	if raw, ok := lookupSetting(settings, "logerrors", "log_errors", "log-errors"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("logErrors: %w", err)
		}
		cfg.LogErrors = val
	}

	return nil
}

func parseOutput(value interface{}) (OutputConfig, error) {
	settings, err := toStringKeyMap(value)
	if err != nil {
		return OutputConfig{}, err
	}
	var out OutputConfig
	if raw, ok := lookupSetting(settings, "json"); ok {
		val, err := asString(raw)
		if err != nil {
			return OutputConfig{}, fmt.Errorf("json: %w", err)
		}
		out.JSON = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "html"); ok {
		val, err := asString(raw)
		if err != nil {
			return OutputConfig{}, fmt.Errorf("html: %w", err)
		}
		out.HTML = strings.TrimSpace(val)
	}
	return out, nil
}

func parseScenarios(value interface{}) ([]Scenario, error) {
	if value == nil {
		return nil, nil
	}
	items, err := toInterfaceSlice(value)
	if err != nil {
		return nil, err
	}
	scenarios := make([]Scenario, 0, len(items))
	for idx, item := range items {
		entry, err := toStringKeyMap(item)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", idx, err)
		}
		scenario, err := buildScenario(entry)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", idx, err)
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

func buildScenario(settings map[string]interface{}) (Scenario, error) {
	var scenario Scenario
	if raw, ok := lookupSetting(settings, "name"); ok {
		val, err := asString(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("name: %w", err)
		}
		scenario.Name = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "method"); ok {
		val, err := asString(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("method: %w", err)
		}
		scenario.Method = strings.ToUpper(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(settings, "url"); ok {
		val, err := asString(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("url: %w", err)
		}
		scenario.URL = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "headers"); ok {
		hdrs, err := asStringMap(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("headers: %w", err)
		}
		if len(hdrs) > 0 {
			scenario.Headers = map[string]string{}
			for key, value := range hdrs {
				trimmedKey := strings.TrimSpace(key)
				if trimmedKey == "" {
					return Scenario{}, fmt.Errorf("headers: key cannot be empty")
				}
				scenario.Headers[http.CanonicalHeaderKey(trimmedKey)] = value
			}
		}
	}
	if raw, ok := lookupSetting(settings, "body"); ok {
		val, err := asString(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("body: %w", err)
		}
		scenario.Body = val
	}
	if raw, ok := lookupSetting(settings, "multipart"); ok {
		parts, err := parseMultipart(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("multipart: %w", err)
		}
		scenario.Multipart = parts
	}
	if raw, ok := lookupSetting(settings, "extract"); ok {
		rules, err := asStringMap(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("extract: %w", err)
		}
		if len(rules) > 0 {
			scenario.Extract = rules
		}
	}
	if raw, ok := lookupSetting(settings, "dependson", "depends_on", "depends-on"); ok {
		val, err := asString(raw)
		if err != nil {
			return Scenario{}, fmt.Errorf("depends_on: %w", err)
		}
		scenario.DependsOn = strings.TrimSpace(val)
	}
	return scenario, nil
}

func parseMultipart(value interface{}) ([]MultipartPart, error) {
	if value == nil {
		return nil, nil
	}
	items, err := toInterfaceSlice(value)
	if err != nil {
		return nil, err
	}
	parts := make([]MultipartPart, 0, len(items))
	for idx, item := range items {
		entry, err := toStringKeyMap(item)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", idx, err)
		}
		part, err := buildMultipartPart(entry)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", idx, err)
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func buildMultipartPart(settings map[string]interface{}) (MultipartPart, error) {
	var part MultipartPart
	if raw, ok := lookupSetting(settings, "type"); ok {
		val, err := asString(raw)
		if err != nil {
			return MultipartPart{}, fmt.Errorf("type: %w", err)
		}
		part.Type = MultipartPartType(strings.ToLower(strings.TrimSpace(val)))
	}
	if raw, ok := lookupSetting(settings, "name"); ok {
		val, err := asString(raw)
		if err != nil {
			return MultipartPart{}, fmt.Errorf("name: %w", err)
		}
		part.Name = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "path"); ok {
		val, err := asString(raw)
		if err != nil {
			return MultipartPart{}, fmt.Errorf("path: %w", err)
		}
		part.Path = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "value"); ok {
		val, err := asString(raw)
		if err != nil {
			return MultipartPart{}, fmt.Errorf("value: %w", err)
		}
		part.Value = val
	}
	return part, nil
}
