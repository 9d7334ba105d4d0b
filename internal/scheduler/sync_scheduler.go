package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-sync-api/infrastructure/repository"
	"github.com/vfg2006/ads-sync-api/internal/config"
	"github.com/vfg2006/ads-sync-api/internal/domain"
	"github.com/vfg2006/ads-sync-api/internal/usecases/syncing"
	"github.com/vfg2006/ads-sync-api/pkg/log"
	"github.com/vfg2006/ads-sync-api/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrSyncInFlight indica que a organização já tem uma execução em andamento
	ErrSyncInFlight = errors.New("sincronização já em andamento para a organização")
	// ErrConfigurationNotFound indica que a organização não tem configuração de sincronização
	ErrConfigurationNotFound = errors.New("configuração de sincronização não encontrada")
	// ErrSchedulerStopping indica que o agendador está parando e não aceita novas execuções
	ErrSchedulerStopping = errors.New("agendador de sincronização em desligamento")
)

type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

type RunStatus string

const (
	RunCompleted       RunStatus = "completed"
	RunPartiallyFailed RunStatus = "partially_failed"
	RunFailed          RunStatus = "failed"
)

// AccountSyncer executa o pipeline de uma conta
type AccountSyncer interface {
	SyncAccount(ctx context.Context, scope syncing.SyncScope) syncing.AccountResult
}

// OrphanReconciler repara órfãos depois das execuções
type OrphanReconciler interface {
	CountOrphans(ctx context.Context, accounts []*domain.ExternalAccount) (int, error)
	Sweep(ctx context.Context, organizationID string, accounts []*domain.ExternalAccount) syncing.ReconciliationReport
}

// RunReport resume uma execução de uma organização
type RunReport struct {
	OrganizationID string                        `json:"organization_id"`
	Trigger        Trigger                       `json:"trigger"`
	Status         RunStatus                     `json:"status"`
	Accounts       []syncing.AccountResult       `json:"accounts"`
	Reconciliation *syncing.ReconciliationReport `json:"reconciliation,omitempty"`
	Error          string                        `json:"error,omitempty"`
	StartedAt      time.Time                     `json:"started_at"`
	FinishedAt     time.Time                     `json:"finished_at"`

	err error
}

type JobStatus struct {
	OrganizationID string         `json:"organization_id"`
	Cadence        domain.Cadence `json:"cadence"`
	NextRun        *time.Time     `json:"next_run,omitempty"`
}

type Status struct {
	Enabled  bool                  `json:"enabled"`
	Running  bool                  `json:"running"`
	Jobs     []JobStatus           `json:"jobs"`
	InFlight []string              `json:"in_flight"`
	LastRuns map[string]*RunReport `json:"last_runs"`
}

// SyncScheduler mantém um job por organização em um único gocron.Scheduler.
// Cada organização tem no máximo uma execução em andamento; disparos concorrentes são descartados.
type SyncScheduler struct {
	scheduler  *gocron.Scheduler
	configRepo repository.SyncConfigurationRepository
	accounts   repository.ExternalAccountRepository
	pipeline   AccountSyncer
	reconciler OrphanReconciler

	enabled               bool
	maxConcurrentAccounts int
	reconcileAfterSync    bool

	// jobsMu serializa Schedule, Cancel e Reschedule
	jobsMu   sync.Mutex
	cadences map[string]domain.Cadence

	// runMu protege inFlight, lastRuns e stopping. running.Add só acontece sob ele.
	runMu    sync.Mutex
	inFlight map[string]time.Time
	lastRuns map[string]*RunReport
	stopping bool

	ctx     context.Context
	running sync.WaitGroup
	now     func() time.Time
}

func NewSyncScheduler(
	cfg *config.Config,
	configRepo repository.SyncConfigurationRepository,
	accounts repository.ExternalAccountRepository,
	pipeline AccountSyncer,
	reconciler OrphanReconciler,
) *SyncScheduler {
	maxConcurrent := cfg.Sync.MaxConcurrentAccounts
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	logrus.WithFields(logrus.Fields{
		"sync_enabled":            cfg.Sync.Enabled,
		"max_concurrent_accounts": maxConcurrent,
		"reconcile_after_sync":    cfg.Sync.ReconcileAfterSync,
	}).Info("Configuração do agendador de sincronização carregada")

	return &SyncScheduler{
		scheduler:             gocron.NewScheduler(time.Local),
		configRepo:            configRepo,
		accounts:              accounts,
		pipeline:              pipeline,
		reconciler:            reconciler,
		enabled:               cfg.Sync.Enabled,
		maxConcurrentAccounts: maxConcurrent,
		reconcileAfterSync:    cfg.Sync.ReconcileAfterSync,
		cadences:              make(map[string]domain.Cadence),
		inFlight:              make(map[string]time.Time),
		lastRuns:              make(map[string]*RunReport),
		ctx:                   context.Background(),
		now:                   time.Now,
	}
}

// Start arma um job para cada configuração habilitada e inicia o agendador
func (s *SyncScheduler) Start(ctx context.Context) error {
	if !s.enabled {
		logrus.Info("Sincronização desabilitada por configuração")
		return nil
	}

	s.ctx = ctx

	configs, err := s.configRepo.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("erro ao carregar configurações de sincronização: %w", err)
	}

	for _, cfg := range configs {
		if err := s.Schedule(cfg.OrganizationID, cfg.Cadence); err != nil {
			logrus.WithError(err).WithField("organization_id", cfg.OrganizationID).
				Error("Erro ao agendar sincronização da organização")
		}
	}

	s.scheduler.StartAsync()
	logrus.WithField("organizations", len(configs)).Info("Agendador de sincronização iniciado")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop para o agendador e espera as execuções em andamento.
// Depois dele nenhum disparo é aceito.
func (s *SyncScheduler) Stop() {
	s.runMu.Lock()
	s.stopping = true
	s.runMu.Unlock()

	if s.scheduler.IsRunning() {
		logrus.Info("Parando agendador de sincronização")
		s.scheduler.Stop()
	}
	s.running.Wait()
}

// Schedule arma (ou rearma) o job da organização na cadência informada
func (s *SyncScheduler) Schedule(organizationID string, cadence domain.Cadence) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	return s.schedule(organizationID, cadence)
}

// Cancel remove o job da organização. Execuções em andamento terminam normalmente.
func (s *SyncScheduler) Cancel(organizationID string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	return s.cancel(organizationID)
}

// Reschedule aplica uma configuração alterada: cancela e arma de novo sob o mesmo lock,
// então nunca existem dois jobs para a mesma organização.
func (s *SyncScheduler) Reschedule(cfg *domain.SyncConfiguration) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if err := s.cancel(cfg.OrganizationID); err != nil {
		return err
	}
	if !cfg.Enabled {
		logrus.WithField("organization_id", cfg.OrganizationID).Info("Sincronização da organização desabilitada")
		return nil
	}

	return s.schedule(cfg.OrganizationID, cfg.Cadence)
}

func (s *SyncScheduler) schedule(organizationID string, cadence domain.Cadence) error {
	interval, err := cadence.Interval()
	if err != nil {
		return err
	}

	if err := s.cancel(organizationID); err != nil {
		return err
	}

	_, err = s.scheduler.
		Every(interval).
		Tag(organizationID).
		WaitForSchedule().
		Do(s.fire, organizationID)
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização da organização %s: %w", organizationID, err)
	}

	s.cadences[organizationID] = cadence
	logrus.WithFields(logrus.Fields{
		"organization_id": organizationID,
		"cadence":         cadence,
		"interval":        interval.String(),
	}).Info("Sincronização da organização agendada")

	return nil
}

func (s *SyncScheduler) cancel(organizationID string) error {
	delete(s.cadences, organizationID)

	if err := s.scheduler.RemoveByTag(organizationID); err != nil && !errors.Is(err, gocron.ErrJobNotFoundWithTag) {
		return fmt.Errorf("erro ao cancelar sincronização da organização %s: %w", organizationID, err)
	}
	return nil
}

// fire é o corpo do job agendado
func (s *SyncScheduler) fire(organizationID string) {
	_, err := s.RunOrganization(s.ctx, organizationID, TriggerScheduled)
	if err != nil && !errors.Is(err, ErrSyncInFlight) && !errors.Is(err, ErrSchedulerStopping) {
		logrus.WithError(err).WithField("organization_id", organizationID).Error("Erro na sincronização agendada")
	}
}

// acquire reserva a organização e conta a execução em running.
// Quem recebe nil chama release ao terminar.
func (s *SyncScheduler) acquire(organizationID string, trigger Trigger) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.stopping {
		return ErrSchedulerStopping
	}

	if startedAt, busy := s.inFlight[organizationID]; busy {
		metrics.SyncRunsSkipped.Inc()
		logrus.WithFields(logrus.Fields{
			"organization_id": organizationID,
			"trigger":         trigger,
			"running_since":   startedAt.Format(time.RFC3339),
		}).Info("Sincronização da organização já em andamento, ignorando disparo")
		return ErrSyncInFlight
	}

	s.inFlight[organizationID] = s.now()
	s.running.Add(1)
	return nil
}

func (s *SyncScheduler) release(organizationID string) {
	s.runMu.Lock()
	delete(s.inFlight, organizationID)
	s.runMu.Unlock()

	s.running.Done()
}

// RunOrganization executa a sincronização da organização e espera o fim.
// Devolve ErrSyncInFlight quando outra execução da mesma organização está em andamento.
func (s *SyncScheduler) RunOrganization(ctx context.Context, organizationID string, trigger Trigger) (*RunReport, error) {
	if err := s.acquire(organizationID, trigger); err != nil {
		return nil, err
	}
	defer s.release(organizationID)

	report := s.execute(ctx, organizationID, trigger)
	return report, report.err
}

// TriggerManualSync dispara uma execução em segundo plano fora da cadência
func (s *SyncScheduler) TriggerManualSync(organizationID string) error {
	if err := s.acquire(organizationID, TriggerManual); err != nil {
		return err
	}

	go func() {
		defer s.release(organizationID)

		s.execute(s.ctx, organizationID, TriggerManual)
	}()

	return nil
}

// TriggerReconciliation roda a varredura de órfãos da organização de forma síncrona
func (s *SyncScheduler) TriggerReconciliation(ctx context.Context, organizationID string) (*syncing.ReconciliationReport, error) {
	if err := s.acquire(organizationID, TriggerManual); err != nil {
		return nil, err
	}
	defer s.release(organizationID)

	cfg, accounts, err := s.load(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	report := s.reconciler.Sweep(ctx, cfg.OrganizationID, accounts)
	return &report, nil
}

func (s *SyncScheduler) load(ctx context.Context, organizationID string) (*domain.SyncConfiguration, []*domain.ExternalAccount, error) {
	cfg, err := s.configRepo.GetByOrganizationID(ctx, organizationID)
	if err != nil {
		return nil, nil, fmt.Errorf("erro ao carregar configuração: %w", err)
	}
	if cfg == nil {
		return nil, nil, ErrConfigurationNotFound
	}

	var accounts []*domain.ExternalAccount
	if len(cfg.ExternalAccountIDs) > 0 {
		accounts, err = s.accounts.ListByIDs(ctx, cfg.ExternalAccountIDs)
	} else {
		accounts, err = s.accounts.ListByOrganizationID(ctx, organizationID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("erro ao carregar contas externas: %w", err)
	}

	// contas de outra organização nunca entram no escopo
	scoped := accounts[:0]
	for _, a := range accounts {
		if a.OrganizationID == organizationID {
			scoped = append(scoped, a)
		}
	}

	return cfg, scoped, nil
}

func (s *SyncScheduler) execute(ctx context.Context, organizationID string, trigger Trigger) *RunReport {
	report := &RunReport{
		OrganizationID: organizationID,
		Trigger:        trigger,
		StartedAt:      s.now(),
	}
	ctx, logger := log.ForRun(ctx, organizationID, string(trigger))

	defer func() {
		report.FinishedAt = s.now()
		metrics.SyncRuns.WithLabelValues(string(report.Status)).Inc()
		metrics.SyncRunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())

		s.runMu.Lock()
		s.lastRuns[organizationID] = report
		s.runMu.Unlock()
	}()

	logger.Info("Iniciando sincronização da organização")

	cfg, accounts, err := s.load(ctx, organizationID)
	if err != nil {
		logger.WithError(err).Error("Erro ao preparar sincronização da organização")
		report.Status = RunFailed
		report.Error = err.Error()
		report.err = err
		return report
	}

	report.Accounts = s.syncAccounts(ctx, cfg, accounts)

	// o watermark avança mesmo com falhas parciais
	if err := s.configRepo.UpdateLastSyncedAt(ctx, organizationID, s.now()); err != nil {
		logger.WithError(err).Error("Erro ao atualizar last_synced_at")
	}

	if s.reconcileAfterSync && len(accounts) > 0 {
		report.Reconciliation = s.reconcileIfNeeded(ctx, organizationID, accounts, logger)
	}

	report.Status = RunCompleted
	for _, r := range report.Accounts {
		if r.Status != syncing.AccountCompleted && r.Status != syncing.AccountSkipped {
			report.Status = RunPartiallyFailed
			break
		}
	}

	logger.WithFields(logrus.Fields{
		"status":   report.Status,
		"accounts": len(report.Accounts),
		"duration": s.now().Sub(report.StartedAt).String(),
	}).Info("Sincronização da organização concluída")

	return report
}

// syncAccounts roda as contas em paralelo, limitado por maxConcurrentAccounts.
// A falha de uma conta nunca interrompe as outras.
func (s *SyncScheduler) syncAccounts(ctx context.Context, cfg *domain.SyncConfiguration, accounts []*domain.ExternalAccount) []syncing.AccountResult {
	results := make([]syncing.AccountResult, len(accounts))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrentAccounts)

	for i, account := range accounts {
		g.Go(func() error {
			results[i] = s.syncAccount(ctx, cfg, account)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *SyncScheduler) syncAccount(ctx context.Context, cfg *domain.SyncConfiguration, account *domain.ExternalAccount) (result syncing.AccountResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic na sincronização da conta: %v", r)
			log.ForContext(ctx).WithFields(log.Fields{
				"organization_id": cfg.OrganizationID,
				"account_id":      account.ID,
				"stack":           string(debug.Stack()),
			}).Error(err.Error())

			result = syncing.AccountResult{
				OrganizationID:    cfg.OrganizationID,
				AccountID:         account.ID,
				ExternalAccountID: account.ExternalID,
				Status:            syncing.AccountAborted,
				Err:               err,
				FinishedAt:        s.now(),
			}
		}
	}()

	return s.pipeline.SyncAccount(ctx, syncing.SyncScope{
		OrganizationID:   cfg.OrganizationID,
		Account:          account,
		CampaignGroupIDs: cfg.CampaignGroupIDs,
	})
}

func (s *SyncScheduler) reconcileIfNeeded(
	ctx context.Context,
	organizationID string,
	accounts []*domain.ExternalAccount,
	logger *logrus.Entry,
) *syncing.ReconciliationReport {
	orphans, err := s.reconciler.CountOrphans(ctx, accounts)
	if err != nil {
		logger.WithError(err).Warn("Erro ao contar entidades órfãs")
		return nil
	}
	if orphans == 0 {
		metrics.OrphanedEntities.WithLabelValues(organizationID).Set(0)
		return nil
	}

	logger.WithField("orphans", orphans).Info("Entidades órfãs encontradas, iniciando reconciliação")
	report := s.reconciler.Sweep(ctx, organizationID, accounts)
	return &report
}

// GetStatus devolve os jobs armados, as organizações em andamento e a última execução de cada uma
func (s *SyncScheduler) GetStatus() Status {
	status := Status{
		Enabled:  s.enabled,
		Running:  s.scheduler.IsRunning(),
		LastRuns: make(map[string]*RunReport),
	}

	s.jobsMu.Lock()
	for orgID, cadence := range s.cadences {
		job := JobStatus{OrganizationID: orgID, Cadence: cadence}
		if jobs, err := s.scheduler.FindJobsByTag(orgID); err == nil && len(jobs) > 0 {
			if next := jobs[0].NextRun(); !next.IsZero() {
				job.NextRun = &next
			}
		}
		status.Jobs = append(status.Jobs, job)
	}
	s.jobsMu.Unlock()
	sort.Slice(status.Jobs, func(i, j int) bool {
		return status.Jobs[i].OrganizationID < status.Jobs[j].OrganizationID
	})

	s.runMu.Lock()
	for orgID := range s.inFlight {
		status.InFlight = append(status.InFlight, orgID)
	}
	for orgID, report := range s.lastRuns {
		status.LastRuns[orgID] = report
	}
	s.runMu.Unlock()
	sort.Strings(status.InFlight)

	return status
}

// JobCount devolve quantos jobs estão armados no agendador
func (s *SyncScheduler) JobCount() int {
	return s.scheduler.Len()
}
