package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Database: Database{MaxOpenConns: 10},
		Meta: Meta{
			PageLimit:          100,
			MaxBatchSize:       50,
			MaxConcurrentCalls: 4,
			MinCallInterval:    250 * time.Millisecond,
		},
		Sync: Sync{
			MaxConcurrentAccounts: 3,
			AnalyticsBatchSize:    20,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "configuração válida", mutate: func(c *Config) {}},
		{name: "concorrência zero", mutate: func(c *Config) { c.Meta.MaxConcurrentCalls = 0 }, wantErr: true},
		{name: "lote zero", mutate: func(c *Config) { c.Meta.MaxBatchSize = 0 }, wantErr: true},
		{name: "página zero", mutate: func(c *Config) { c.Meta.PageLimit = 0 }, wantErr: true},
		{name: "intervalo negativo", mutate: func(c *Config) { c.Meta.MinCallInterval = -time.Second }, wantErr: true},
		{name: "pool sem folga para as contas", mutate: func(c *Config) { c.Database.MaxOpenConns = 3 }, wantErr: true},
		{name: "pool sem limite", mutate: func(c *Config) { c.Database.MaxOpenConns = 0 }},
		{name: "lote de analytics zero", mutate: func(c *Config) { c.Sync.AnalyticsBatchSize = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateClampsAccountConcurrency(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.MaxConcurrentAccounts = 0

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Sync.MaxConcurrentAccounts)
}
