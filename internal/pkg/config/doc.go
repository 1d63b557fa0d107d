// Package config provides the settings structs of the admin console and the loader
// that reads them from a YAML file and ADMIN_ prefixed environment variables.
//
// Every settings struct validates itself with go-playground/validator, so callers
// receive a fully checked Config or an error.
package config
