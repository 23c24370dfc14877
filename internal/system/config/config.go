/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

var AppConfig *Config

type AddrConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type LogConfig struct {
	LogLevel string `yaml:"log_level"`
}

type AuthConfig struct {
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

type DataSourceConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type YNABConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIToken  string `yaml:"api_token"`
	BudgetID  string `yaml:"budget_id"`
	AccountID string `yaml:"account_id"`
}

type ImporterConfig struct {
	// SubmitRetries bounds retries of transient YNAB failures per submission.
	SubmitRetries  int `yaml:"submit_retries"`
	RetryBackoffMs int `yaml:"retry_backoff_ms"`
}

type SuggestionsConfig struct {
	// Threshold is the minimum share (percent) of a payee's transactions
	// that must agree on one category before a rule is suggested.
	Threshold       float64 `yaml:"threshold"`
	MinTransactions int     `yaml:"min_transactions"`
}

type Config struct {
	Addr        AddrConfig        `yaml:"addr"`
	Log         LogConfig         `yaml:"log"`
	Auth        AuthConfig        `yaml:"auth"`
	DataSource  DataSourceConfig  `yaml:"datasource"`
	YNAB        YNABConfig        `yaml:"ynab"`
	Importer    ImporterConfig    `yaml:"importer"`
	Suggestions SuggestionsConfig `yaml:"suggestions"`
}

// LoadConfig loads and sets AppConfig (global variable). Environment
// variable references in the file are expanded before unmarshalling.
func LoadConfig(filePath string) (*Config, error) {
	file, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(file))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	AppConfig = &config
	return AppConfig, nil
}

// GetConfig returns the loaded application configuration.
func GetConfig() *Config {
	return AppConfig
}

func applyDefaults(config *Config) {
	if config.Log.LogLevel == "" {
		config.Log.LogLevel = "INFO"
	}
	if config.YNAB.BaseURL == "" {
		config.YNAB.BaseURL = "https://api.ynab.com/v1"
	}
	if config.Importer.SubmitRetries == 0 {
		config.Importer.SubmitRetries = 3
	}
	if config.Importer.RetryBackoffMs == 0 {
		config.Importer.RetryBackoffMs = 500
	}
	if config.Suggestions.Threshold == 0 {
		config.Suggestions.Threshold = 98.0
	}
	if config.Suggestions.MinTransactions == 0 {
		config.Suggestions.MinTransactions = 3
	}
}
