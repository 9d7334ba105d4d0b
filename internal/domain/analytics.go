package domain

import "time"

// Granularity define o recorte temporal de um registro de analytics
type Granularity string

const (
	// GranularityAggregate é o acumulado desde o início até o momento da coleta
	GranularityAggregate Granularity = "aggregate"
	// GranularityDaily é o bucket de um único dia
	GranularityDaily Granularity = "daily"
)

// Period é o intervalo [Start, End] em datas (sem horário)
type Period struct {
	Start time.Time
	End   time.Time
}

// DayPeriod cria o período de um único dia
func DayPeriod(day time.Time) Period {
	d := TruncateDay(day)
	return Period{Start: d, End: d}
}

// Elapsed indica que o período terminou antes de "now"
func (p Period) Elapsed(now time.Time) bool {
	return TruncateDay(p.End).Before(TruncateDay(now))
}

// TruncateDay remove o horário mantendo a localização
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Metrics é o conjunto fixo de métricas numéricas
type Metrics struct {
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Reach       int64   `json:"reach"`
	Cost        float64 `json:"cost"`
	Conversions int64   `json:"conversions"`
	Engagements int64   `json:"engagements"`
}

// AnalyticsRecord é identificado por (entidade, início, fim, granularidade)
type AnalyticsRecord struct {
	ID          string      `json:"id"`
	EntityKind  EntityKind  `json:"entity_kind"`
	EntityID    string      `json:"entity_id"`
	Granularity Granularity `json:"granularity"`
	PeriodStart time.Time   `json:"period_start"`
	PeriodEnd   time.Time   `json:"period_end"`
	Metrics
	FetchedAt time.Time `json:"fetched_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnalyticsKey é a chave única do upsert de analytics
type AnalyticsKey struct {
	EntityKind  EntityKind
	EntityID    string
	PeriodStart string
	PeriodEnd   string
	Granularity Granularity
}

func (r *AnalyticsRecord) Key() AnalyticsKey {
	return AnalyticsKey{
		EntityKind:  r.EntityKind,
		EntityID:    r.EntityID,
		PeriodStart: r.PeriodStart.Format(time.DateOnly),
		PeriodEnd:   r.PeriodEnd.Format(time.DateOnly),
		Granularity: r.Granularity,
	}
}

// RemoteAnalytics é uma linha de insights já mapeada da plataforma
type RemoteAnalytics struct {
	EntityKind  EntityKind
	ExternalID  string
	Granularity Granularity
	Period      Period
	Metrics
}

// AnalyticsQuery pede os insights de um lote de campanhas em um nível e janela
type AnalyticsQuery struct {
	Level               EntityKind
	CampaignExternalIDs []string
	Granularity         Granularity
	Period              Period
}
