// Package config provides configuration management for the office document translator.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"office-translator/internal/logger"
	"office-translator/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "office-translator-config.json"
	// EnvOpenAIAPIKey is the environment variable name for the OpenAI API key
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvOpenAIBaseURL is the environment variable name for the OpenAI base URL
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the default OpenAI model to use
	DefaultModel = "gpt-4o-mini"
	// DefaultListenAddr is the default HTTP listen address
	DefaultListenAddr = ":8090"
	// DefaultBatchSize is the default maximum number of text units per
	// translation batch
	DefaultBatchSize = 50
	// DefaultTargetLang is the default target language for translation requests
	DefaultTargetLang = "Turkish"
	// DefaultJobRetention is how many minutes a completed or failed job
	// remains queryable before eviction
	DefaultJobRetention = 60
	// MaxBatchSize caps the configurable batch size
	MaxBatchSize = 500
)

// ConfigManager manages application configuration
type ConfigManager struct {
	configPath string
	config     *types.Config
}

// NewConfigManager creates a new ConfigManager with the specified config path.
// If configPath is empty, it uses the default path in the user's home directory.
func NewConfigManager(configPath string) (*ConfigManager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "office-translator", DefaultConfigFileName)
	}

	logger.Info("ConfigManager initialized", logger.String("configPath", configPath))
	return &ConfigManager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

// defaultConfig returns a Config with default values
func defaultConfig() *types.Config {
	return &types.Config{
		OpenAIAPIKey:  "",
		OpenAIBaseURL: DefaultBaseURL,
		OpenAIModel:   DefaultModel,
		ListenAddr:    DefaultListenAddr,
		BatchSize:     DefaultBatchSize,
		TargetLang:    DefaultTargetLang,
		JobRetention:  DefaultJobRetention,
		DataDir:       "",
	}
}

// Load loads configuration from the config file.
// A missing file is not an error: defaults are used. A file with invalid
// JSON logs a warning and falls back to defaults. Empty fields are filled
// with their default values after loading.
func (m *ConfigManager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		config := &types.Config{}
		if err := json.Unmarshal(data, config); err != nil {
			logger.Warn("invalid config file format, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			logger.Info("configuration loaded successfully",
				logger.String("path", m.configPath),
				logger.Int("apiKeyLength", len(config.OpenAIAPIKey)),
				logger.String("baseURL", config.OpenAIBaseURL),
				logger.String("model", config.OpenAIModel))
			m.config = config
		}
	}

	// Apply defaults for empty fields
	if m.config.OpenAIModel == "" {
		m.config.OpenAIModel = DefaultModel
	}
	if m.config.OpenAIBaseURL == "" {
		m.config.OpenAIBaseURL = DefaultBaseURL
	}
	if m.config.ListenAddr == "" {
		m.config.ListenAddr = DefaultListenAddr
	}
	if m.config.BatchSize <= 0 {
		m.config.BatchSize = DefaultBatchSize
	}
	if m.config.BatchSize > MaxBatchSize {
		logger.Warn("batch size too large, clamping",
			logger.Int("configured", m.config.BatchSize), logger.Int("max", MaxBatchSize))
		m.config.BatchSize = MaxBatchSize
	}
	if m.config.TargetLang == "" {
		m.config.TargetLang = DefaultTargetLang
	}
	if m.config.JobRetention <= 0 {
		m.config.JobRetention = DefaultJobRetention
	}

	return nil
}

// Save saves the current configuration to the config file.
func (m *ConfigManager) Save() error {
	logger.Debug("saving configuration", logger.String("path", m.configPath))

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved successfully", logger.String("path", m.configPath))
	return nil
}

// GetAPIKey returns the OpenAI API key.
// It first checks the config file value, then falls back to the environment variable.
func (m *ConfigManager) GetAPIKey() string {
	if m.config != nil && m.config.OpenAIAPIKey != "" {
		return m.config.OpenAIAPIKey
	}
	return os.Getenv(EnvOpenAIAPIKey)
}

// SetAPIKey sets the OpenAI API key and saves the configuration.
func (m *ConfigManager) SetAPIKey(key string) error {
	logger.Info("setting API key")
	if m.config == nil {
		m.config = defaultConfig()
	}
	m.config.OpenAIAPIKey = key
	return m.Save()
}

// GetConfig returns the current configuration.
func (m *ConfigManager) GetConfig() *types.Config {
	if m.config == nil {
		return defaultConfig()
	}
	return m.config
}

// SetConfig sets the entire configuration.
func (m *ConfigManager) SetConfig(config *types.Config) {
	m.config = config
}

// GetConfigPath returns the path to the config file.
func (m *ConfigManager) GetConfigPath() string {
	return m.configPath
}

// GetModel returns the OpenAI model to use.
func (m *ConfigManager) GetModel() string {
	if m.config != nil && m.config.OpenAIModel != "" {
		return m.config.OpenAIModel
	}
	return DefaultModel
}

// GetBaseURL returns the OpenAI API base URL.
// It first checks the config file value, then falls back to the environment variable.
func (m *ConfigManager) GetBaseURL() string {
	if m.config != nil && m.config.OpenAIBaseURL != "" {
		return m.config.OpenAIBaseURL
	}
	if envURL := os.Getenv(EnvOpenAIBaseURL); envURL != "" {
		return envURL
	}
	return DefaultBaseURL
}

// GetListenAddr returns the HTTP listen address.
func (m *ConfigManager) GetListenAddr() string {
	if m.config != nil && m.config.ListenAddr != "" {
		return m.config.ListenAddr
	}
	return DefaultListenAddr
}

// GetBatchSize returns the maximum number of text units per translation batch.
func (m *ConfigManager) GetBatchSize() int {
	if m.config != nil && m.config.BatchSize > 0 {
		return m.config.BatchSize
	}
	return DefaultBatchSize
}

// GetTargetLang returns the default target language for requests that do
// not specify one.
func (m *ConfigManager) GetTargetLang() string {
	if m.config != nil && m.config.TargetLang != "" {
		return m.config.TargetLang
	}
	return DefaultTargetLang
}

// GetJobRetention returns how many minutes finished jobs stay queryable.
func (m *ConfigManager) GetJobRetention() int {
	if m.config != nil && m.config.JobRetention > 0 {
		return m.config.JobRetention
	}
	return DefaultJobRetention
}

// GetDataDir returns the directory for runtime state such as the error
// record file. Defaults to ~/.office-translator.
func (m *ConfigManager) GetDataDir() string {
	if m.config != nil && m.config.DataDir != "" {
		return m.config.DataDir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".office-translator"
	}
	return filepath.Join(homeDir, ".office-translator")
}

// UpdateConfig updates the configuration with new values and saves it.
// Empty or non-positive arguments leave the corresponding field unchanged.
func (m *ConfigManager) UpdateConfig(apiKey, baseURL, model string, batchSize int, targetLang string, jobRetention int) error {
	logger.Info("updating configuration")
	if m.config == nil {
		m.config = defaultConfig()
	}

	if apiKey != "" {
		m.config.OpenAIAPIKey = apiKey
	}
	if baseURL != "" {
		m.config.OpenAIBaseURL = baseURL
	}
	if model != "" {
		m.config.OpenAIModel = model
	}
	if batchSize > 0 {
		m.config.BatchSize = batchSize
		if m.config.BatchSize > MaxBatchSize {
			m.config.BatchSize = MaxBatchSize
		}
	}
	if targetLang != "" {
		m.config.TargetLang = targetLang
	}
	if jobRetention > 0 {
		m.config.JobRetention = jobRetention
	}

	return m.Save()
}
