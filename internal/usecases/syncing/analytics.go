package syncing

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-sync-api/internal/domain"
	"github.com/vfg2006/ads-sync-api/pkg/metrics"
)

var (
	analyticsLevels        = []domain.EntityKind{domain.EntityKindCampaign, domain.EntityKindAd}
	analyticsGranularities = []domain.Granularity{domain.GranularityAggregate, domain.GranularityDaily}
)

// AnalyticsWindows calcula as janelas de um lote de campanhas.
// Agregado: do início mais antigo conhecido do lote (ou now - lookback) até hoje.
// Diário: só hoje, já que dias encerrados não mudam mais.
func AnalyticsWindows(campaigns []*domain.Entity, now time.Time, lookbackDays int) map[domain.Granularity]domain.Period {
	today := domain.TruncateDay(now)

	var earliest *time.Time
	for _, c := range campaigns {
		if c == nil || c.StartDate == nil {
			continue
		}
		if earliest == nil || c.StartDate.Before(*earliest) {
			earliest = c.StartDate
		}
	}

	start := today.AddDate(0, 0, -lookbackDays)
	if earliest != nil {
		start = domain.TruncateDay(earliest.In(now.Location()))
	}
	if start.After(today) {
		start = today
	}

	return map[domain.Granularity]domain.Period{
		domain.GranularityAggregate: {Start: start, End: today},
		domain.GranularityDaily:     domain.DayPeriod(now),
	}
}

// syncAnalytics busca os insights de todas as campanhas em escopo, mudadas ou não, em lotes.
// Só erros fatais para a conta são devolvidos.
func (p *Pipeline) syncAnalytics(ctx context.Context, run *accountRun) error {
	known := run.known[domain.EntityKindCampaign]

	campaigns := make([]*domain.Entity, 0, len(run.campaigns))
	for _, externalID := range run.campaigns {
		if c, ok := known[externalID]; ok {
			campaigns = append(campaigns, c)
			continue
		}
		// sem cópia local não há dono para o registro
		run.result.Analytics.Skipped++
	}

	now := p.now()
	for start := 0; start < len(campaigns); start += p.batchSize {
		end := min(start+p.batchSize, len(campaigns))
		batch := campaigns[start:end]

		limited, err := p.syncAnalyticsBatch(ctx, run, batch, now)
		if err != nil {
			return err
		}
		if limited {
			run.log.WithField("remaining_campaigns", len(campaigns)-start).
				Warn("sync: insights limitados pela plataforma, analytics da conta fica para o próximo ciclo")
			return nil
		}
	}

	return nil
}

// syncAnalyticsBatch devolve limited=true quando a plataforma limitou a taxa.
// A etapa inteira da conta para aí, sem novas chamadas neste ciclo.
func (p *Pipeline) syncAnalyticsBatch(ctx context.Context, run *accountRun, batch []*domain.Entity, now time.Time) (limited bool, err error) {
	ids := make([]string, 0, len(batch))
	for _, c := range batch {
		ids = append(ids, c.ExternalID)
	}

	windows := AnalyticsWindows(batch, now, p.lookbackDays)

	for _, level := range analyticsLevels {
		for _, granularity := range analyticsGranularities {
			query := domain.AnalyticsQuery{
				Level:               level,
				CampaignExternalIDs: ids,
				Granularity:         granularity,
				Period:              windows[granularity],
			}

			rows, err := p.platform.FetchAnalytics(ctx, run.token, run.scope.Account.ExternalID, query)
			if err != nil {
				if domain.IsFatalForAccount(err) {
					return false, err
				}
				run.fail(StageAnalytics, level, "", err)
				if domain.ClassOf(err) == domain.ErrorClassRateLimited {
					return true, nil
				}
				continue
			}
			run.result.Analytics.Fetched += len(rows)

			records, err := p.buildAnalytics(ctx, run, level, rows, now)
			if err != nil {
				run.fail(StageAnalytics, level, "", err)
				continue
			}
			if len(records) == 0 {
				continue
			}

			written, err := p.analytics.Upsert(ctx, records)
			if err != nil {
				run.fail(StageAnalytics, level, "", err)
				continue
			}

			run.result.Analytics.Upserted += written
			metrics.AnalyticsUpserts.WithLabelValues(string(level), string(granularity)).Add(float64(written))
		}
	}

	return false, nil
}

// buildAnalytics resolve o dono local de cada linha. Linhas sem dono ou de dias já encerrados
// na granularidade diária são descartadas e contadas.
func (p *Pipeline) buildAnalytics(
	ctx context.Context,
	run *accountRun,
	level domain.EntityKind,
	rows []domain.RemoteAnalytics,
	now time.Time,
) ([]*domain.AnalyticsRecord, error) {
	owners, err := p.analyticsOwners(ctx, run, level, rows)
	if err != nil {
		return nil, err
	}

	records := make([]*domain.AnalyticsRecord, 0, len(rows))
	for _, row := range rows {
		if row.Granularity == domain.GranularityDaily && row.Period.Elapsed(now) {
			run.result.Analytics.Skipped++
			continue
		}

		owner, ok := owners[row.ExternalID]
		if !ok {
			run.result.Analytics.Skipped++
			run.log.WithFields(logrus.Fields{
				"entity_kind": level,
				"external_id": row.ExternalID,
			}).Debug("sync: analytics sem entidade local, ignorando")
			continue
		}

		records = append(records, &domain.AnalyticsRecord{
			EntityKind:  level,
			EntityID:    owner.ID,
			Granularity: row.Granularity,
			PeriodStart: domain.TruncateDay(row.Period.Start),
			PeriodEnd:   domain.TruncateDay(row.Period.End),
			Metrics:     row.Metrics,
			FetchedAt:   now,
		})
	}

	return records, nil
}

func (p *Pipeline) analyticsOwners(
	ctx context.Context,
	run *accountRun,
	level domain.EntityKind,
	rows []domain.RemoteAnalytics,
) (map[string]*domain.Entity, error) {
	owners := make(map[string]*domain.Entity, len(rows))
	var missing []string

	for _, row := range rows {
		if _, done := owners[row.ExternalID]; done {
			continue
		}
		if e, ok := run.known[level][row.ExternalID]; ok {
			owners[row.ExternalID] = e
			continue
		}
		missing = append(missing, row.ExternalID)
		owners[row.ExternalID] = nil
	}

	if len(missing) > 0 {
		locals, err := p.entities.ListByExternalIDs(ctx, level, run.scope.Account.ID, missing)
		if err != nil {
			return nil, err
		}
		for _, l := range locals {
			owners[l.ExternalID] = l
			run.remember(l)
		}
	}

	for id, e := range owners {
		if e == nil {
			delete(owners, id)
		}
	}

	return owners, nil
}
