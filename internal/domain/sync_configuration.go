package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidCadence = errors.New("cadência inválida")

// Cadence é o intervalo de sincronização configurável por organização.
// É um conjunto fechado, não uma expressão cron livre.
type Cadence string

const (
	CadenceHourly       Cadence = "hourly"
	CadenceEvery2Hours  Cadence = "every_2_hours"
	CadenceEvery3Hours  Cadence = "every_3_hours"
	CadenceEvery6Hours  Cadence = "every_6_hours"
	CadenceEvery12Hours Cadence = "every_12_hours"
	CadenceDaily        Cadence = "daily"
)

// Cadences lista as cadências aceitas, da mais frequente para a menos frequente
var Cadences = []Cadence{
	CadenceHourly, CadenceEvery2Hours, CadenceEvery3Hours,
	CadenceEvery6Hours, CadenceEvery12Hours, CadenceDaily,
}

var cadenceIntervals = map[Cadence]time.Duration{
	CadenceHourly:       time.Hour,
	CadenceEvery2Hours:  2 * time.Hour,
	CadenceEvery3Hours:  3 * time.Hour,
	CadenceEvery6Hours:  6 * time.Hour,
	CadenceEvery12Hours: 12 * time.Hour,
	CadenceDaily:        24 * time.Hour,
}

// ParseCadence converte o valor recebido em uma Cadence conhecida
func ParseCadence(value string) (Cadence, error) {
	c := Cadence(value)
	if _, ok := cadenceIntervals[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCadence, value)
	}
	return c, nil
}

// Interval retorna a duração correspondente à cadência
func (c Cadence) Interval() (time.Duration, error) {
	d, ok := cadenceIntervals[c]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCadence, string(c))
	}
	return d, nil
}

// SyncConfiguration define o escopo e a frequência da sincronização de uma organização
type SyncConfiguration struct {
	OrganizationID     string     `json:"organization_id"`
	Enabled            bool       `json:"enabled"`
	Cadence            Cadence    `json:"cadence"`
	ExternalAccountIDs []string   `json:"external_account_ids"`
	CampaignGroupIDs   []string   `json:"campaign_group_ids,omitempty"`
	LastSyncedAt       *time.Time `json:"last_synced_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// UpdateSyncConfigurationRequest é o corpo aceito pelo endpoint de configuração
type UpdateSyncConfigurationRequest struct {
	Enabled            *bool    `json:"enabled,omitempty"`
	Cadence            *string  `json:"cadence,omitempty"`
	ExternalAccountIDs []string `json:"external_account_ids,omitempty"`
	CampaignGroupIDs   []string `json:"campaign_group_ids,omitempty"`
}

// Apply aplica a requisição sobre a configuração existente
func (r *UpdateSyncConfigurationRequest) Apply(cfg *SyncConfiguration) error {
	if r.Cadence != nil {
		c, err := ParseCadence(*r.Cadence)
		if err != nil {
			return err
		}
		cfg.Cadence = c
	}
	if r.Enabled != nil {
		cfg.Enabled = *r.Enabled
	}
	if r.ExternalAccountIDs != nil {
		cfg.ExternalAccountIDs = r.ExternalAccountIDs
	}
	if r.CampaignGroupIDs != nil {
		cfg.CampaignGroupIDs = r.CampaignGroupIDs
	}
	if cfg.Cadence == "" {
		cfg.Cadence = CadenceHourly
	}
	return nil
}

// ExternalAccount é uma conta de anúncios de uma organização em uma plataforma externa
type ExternalAccount struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	ExternalID     string `json:"external_id"`
	Platform       string `json:"platform"`
	Name           string `json:"name"`
}

// Credential é o token de acesso de uma conta externa
type Credential struct {
	ExternalAccountID string    `json:"external_account_id"`
	AccessToken       string    `json:"-"`
	ExpiresAt         time.Time `json:"expires_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
