package metadomain

import "strconv"

type Action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// Insight é uma linha de /insights. A Graph API devolve números como string.
type Insight struct {
	AccountID            string   `json:"account_id"`
	CampaignID           string   `json:"campaign_id"`
	AdSetID              string   `json:"adset_id"`
	AdID                 string   `json:"ad_id"`
	Objective            string   `json:"objective"`
	DateStart            string   `json:"date_start"`
	DateStop             string   `json:"date_stop"`
	Impressions          string   `json:"impressions"`
	Clicks               string   `json:"clicks"`
	Reach                string   `json:"reach"`
	Spend                string   `json:"spend"`
	InlinePostEngagement string   `json:"inline_post_engagement"`
	Actions              []Action `json:"actions"`
}

const InsightFields = "account_id,campaign_id,adset_id,ad_id,objective,impressions,clicks,reach,spend,inline_post_engagement,actions"

// Mapeamento de "objective" -> "action_type" que conta como conversão
var MetaObjectiveToActionType = map[string]string{
	"LINK_CLICKS":           "link_click",
	"POST_ENGAGEMENT":       "post_engagement",
	"PAGE_LIKES":            "like",
	"VIDEO_VIEWS":           "video_view",
	"LEAD_GENERATION":       "lead",
	"CONVERSIONS":           "offsite_conversion",
	"APP_INSTALLS":          "app_install",
	"PRODUCT_CATALOG_SALES": "offsite_conversion.fb_pixel_purchase",
	"MESSAGES":              "onsite_conversion.messaging_first_reply",
	"REACH":                 "reach",
	"STORE_TRAFFIC":         "store_visit",
	"EVENT_RESPONSES":       "rsvp",
	"OUTCOME_ENGAGEMENT":    "onsite_conversion.messaging_conversation_started_7d",
	"OUTCOME_LEADS":         "lead",
	"OUTCOME_SALES":         "offsite_conversion.fb_pixel_purchase",
	"OUTCOME_TRAFFIC":       "link_click",
	"OUTCOME_APP_PROMOTION": "app_install",
}

// ActionValue soma o valor das ações do tipo informado
func (i *Insight) ActionValue(actionType string) int64 {
	var total int64
	for _, a := range i.Actions {
		if a.ActionType != actionType {
			continue
		}
		v, err := strconv.ParseFloat(a.Value, 64)
		if err != nil {
			continue
		}
		total += int64(v)
	}
	return total
}

// Conversions retorna o resultado de acordo com o objetivo da campanha
func (i *Insight) Conversions() int64 {
	actionType, ok := MetaObjectiveToActionType[i.Objective]
	if !ok {
		return 0
	}
	return i.ActionValue(actionType)
}

// Engagements usa inline_post_engagement e cai para a ação post_engagement
func (i *Insight) Engagements() int64 {
	if i.InlinePostEngagement != "" {
		if v, err := strconv.ParseInt(i.InlinePostEngagement, 10, 64); err == nil {
			return v
		}
	}
	return i.ActionValue("post_engagement")
}
