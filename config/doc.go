// Package config provides configuration loading and validation for the
// gateway.
//
// It uses Viper to load configuration from config.yml and a .env file, with
// environment variables overriding file values. Services embed ServiceConfig
// in their own config structs and extend ApplyDefaults/Validate.
package config
