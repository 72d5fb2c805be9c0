// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
//
// Configuration is loaded with viper (defaults, then an optional flashdeck.yaml,
// then FLASHDECK_* environment variables) and validated with validator/v10.
package config
