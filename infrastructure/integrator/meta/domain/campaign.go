package metadomain

import (
	"encoding/json"
)

// TimeLayout é o formato de data/hora usado pela Graph API (ex: 2024-01-15T10:20:30+0000)
const TimeLayout = "2006-01-02T15:04:05-0700"

type AdLabel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Campaign struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	EffectiveStatus string    `json:"effective_status"`
	Objective       string    `json:"objective"`
	StartTime       string    `json:"start_time"`
	StopTime        string    `json:"stop_time"`
	CreatedTime     string    `json:"created_time"`
	UpdatedTime     string    `json:"updated_time"`
	AdLabels        []AdLabel `json:"adlabels"`

	// Raw guarda o objeto original, incluindo campos não modelados
	Raw json.RawMessage `json:"-"`
}

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

type Paging struct {
	Cursors Cursors `json:"cursors"`
	Next    string  `json:"next,omitempty"`
}

// Page é o envelope de listagem da Graph API
type Page struct {
	Data   []json.RawMessage `json:"data"`
	Paging Paging            `json:"paging"`
}

// CampaignFields são os campos solicitados na listagem de campanhas
const CampaignFields = "id,account_id,name,status,effective_status,objective,start_time,stop_time,created_time,updated_time,adlabels{id,name}"
