package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJWKSEndpoints(t *testing.T) {
	endpoints := parseJWKSEndpoints("https://auth.farmcare.io=https://auth.farmcare.io/.well-known/jwks.json")
	assert.Equal(t, map[string]string{
		"https://auth.farmcare.io": "https://auth.farmcare.io/.well-known/jwks.json",
	}, endpoints)

	endpoints = parseJWKSEndpoints("a=1, b=2")
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, endpoints)

	assert.Empty(t, parseJWKSEndpoints(""))
	assert.Empty(t, parseJWKSEndpoints("malformed"))
}

func TestValidateEndpoints(t *testing.T) {
	cfg := &Config{}
	cfg.Classifier.BaseURL = "https://classifier.example.com"
	cfg.Recommender.BaseURL = "https://recommender.example.com"
	cfg.Mailer.BaseURL = "https://mailer.example.com"
	assert.NoError(t, cfg.validateEndpoints())

	cfg.Mailer.BaseURL = ""
	assert.Error(t, cfg.validateEndpoints())
}

func TestConnectionString(t *testing.T) {
	dbCfg := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "farmcare",
		Password: "secret",
		Database: "farmcare_engine",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=farmcare password=secret dbname=farmcare_engine sslmode=disable",
		dbCfg.ConnectionString())
}
