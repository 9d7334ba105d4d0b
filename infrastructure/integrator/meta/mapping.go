package meta

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/ads-sync-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/ads-sync-api/internal/domain"
	"github.com/vfg2006/ads-sync-api/pkg/utils"
)

// MapCampaign converte uma campanha da Graph API. Os ids das adlabels definem os grupos da campanha.
func MapCampaign(c metadomain.Campaign) domain.RemoteEntity {
	groups := make([]string, 0, len(c.AdLabels))
	for _, label := range c.AdLabels {
		groups = append(groups, label.ID)
	}

	return domain.RemoteEntity{
		Kind:             domain.EntityKindCampaign,
		ExternalID:       c.ID,
		GroupExternalIDs: groups,
		Name:             c.Name,
		Status:           firstNonEmpty(c.EffectiveStatus, c.Status),
		LastModifiedAt:   parseGraphTime(c.UpdatedTime, "updated_time", c.ID),
		StartDate:        parseGraphTime(c.StartTime, "start_time", c.ID),
		Payload:          c.Raw,
	}
}

// MapAdSet converte um conjunto de anúncios, cujo pai é a campanha
func MapAdSet(a metadomain.AdSet) domain.RemoteEntity {
	return domain.RemoteEntity{
		Kind:             domain.EntityKindAdGroup,
		ExternalID:       a.ID,
		ParentExternalID: a.CampaignID,
		Name:             a.Name,
		Status:           firstNonEmpty(a.EffectiveStatus, a.Status),
		LastModifiedAt:   parseGraphTime(a.UpdatedTime, "updated_time", a.ID),
		StartDate:        parseGraphTime(a.StartTime, "start_time", a.ID),
		Payload:          a.Raw,
	}
}

// MapAd converte um anúncio, cujo pai é o conjunto de anúncios
func MapAd(a metadomain.Ad) domain.RemoteEntity {
	return domain.RemoteEntity{
		Kind:             domain.EntityKindAd,
		ExternalID:       a.ID,
		ParentExternalID: a.AdSetID,
		Name:             a.Name,
		Status:           firstNonEmpty(a.EffectiveStatus, a.Status),
		LastModifiedAt:   parseGraphTime(a.UpdatedTime, "updated_time", a.ID),
		Payload:          a.Raw,
	}
}

// MapInsight converte uma linha de insights no nível informado
func MapInsight(row metadomain.Insight, level domain.EntityKind, granularity domain.Granularity) (domain.RemoteAnalytics, error) {
	var externalID string
	switch level {
	case domain.EntityKindCampaign:
		externalID = row.CampaignID
	case domain.EntityKindAdGroup:
		externalID = row.AdSetID
	case domain.EntityKindAd:
		externalID = row.AdID
	default:
		return domain.RemoteAnalytics{}, fmt.Errorf("nível de insights desconhecido: %q", level)
	}
	if externalID == "" {
		return domain.RemoteAnalytics{}, fmt.Errorf("linha de insights sem id de %s", level)
	}

	start, err := utils.ParseDay(row.DateStart)
	if err != nil {
		return domain.RemoteAnalytics{}, fmt.Errorf("date_start inválido %q: %w", row.DateStart, err)
	}
	stop, err := utils.ParseDay(row.DateStop)
	if err != nil {
		return domain.RemoteAnalytics{}, fmt.Errorf("date_stop inválido %q: %w", row.DateStop, err)
	}

	return domain.RemoteAnalytics{
		EntityKind:  level,
		ExternalID:  externalID,
		Granularity: granularity,
		Period:      domain.Period{Start: start, End: stop},
		Metrics: domain.Metrics{
			Impressions: parseCount(row.Impressions),
			Clicks:      parseCount(row.Clicks),
			Reach:       parseCount(row.Reach),
			Cost:        utils.ParseMoney(row.Spend),
			Conversions: row.Conversions(),
			Engagements: row.Engagements(),
		},
	}, nil
}

func parseGraphTime(value, field, externalID string) *time.Time {
	if value == "" {
		return nil
	}

	t, err := time.Parse(metadomain.TimeLayout, value)
	if err != nil {
		// alguns endpoints já devolvem RFC3339
		t, err = time.Parse(time.RFC3339, value)
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"field":       field,
			"value":       value,
			"external_id": externalID,
		}).Warn("meta: data inválida no payload")
		return nil
	}

	t = t.UTC()
	return &t
}

func parseCount(value string) int64 {
	if value == "" {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil {
			return 0
		}
		return int64(f)
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
