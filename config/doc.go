// Package config loads application configuration with Viper.
//
// A YAML file is searched in the working directory and its parents
// (.shellwrap.yml, shellwrap.yml) and then in the user config directory.
// Variables prefixed with the application name override file values, so
// SHELLWRAP_EXEC_TIMEOUT sets exec.timeout; other variables are never read.
// A .env.shellwrap or .env file in the working directory is loaded with
// godotenv first and does not override variables already set.
//
//	var cfg AppConfig
//	err := config.LoadConfig("shellwrap", &cfg, config.WithConfigFile(path))
package config
