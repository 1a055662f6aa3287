// Package config loads and validates application configuration from
// environment variables and an optional config file. It gives the server,
// database and auth components type-safe access to their settings while
// keeping configuration concerns out of business logic.
package config
