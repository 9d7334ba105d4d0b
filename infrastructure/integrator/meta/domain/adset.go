package metadomain

import "encoding/json"

// AdSet é o nível de grupo de anúncios da Meta
type AdSet struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	CampaignID      string `json:"campaign_id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	UpdatedTime     string `json:"updated_time"`

	Raw json.RawMessage `json:"-"`
}

type Ad struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	CampaignID      string `json:"campaign_id"`
	AdSetID         string `json:"adset_id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status"`
	CreatedTime     string `json:"created_time"`
	UpdatedTime     string `json:"updated_time"`

	Raw json.RawMessage `json:"-"`
}

const (
	AdSetFields = "id,account_id,campaign_id,name,status,effective_status,start_time,end_time,updated_time"
	AdFields    = "id,account_id,campaign_id,adset_id,name,status,effective_status,created_time,updated_time"
)
