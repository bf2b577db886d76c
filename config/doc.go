// Package config loads service configuration with viper.
//
// LoadConfig reads config.yml from the usual locations, loads a .env file
// through godotenv and then lets environment variables override any key:
// GEMINI_API_KEY sets gemini.api_key, SERVER_PORT sets server.port.
package config
