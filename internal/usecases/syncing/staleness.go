package syncing

import (
	"context"

	"github.com/vfg2006/ads-sync-api/internal/domain"
)

// IsStale decide se a cópia local precisa ser reescrita.
// Sem registro local: sempre. Com version na plataforma: versões diferentes.
// Só com timestamp: o updated_time gravado na última escrita estritamente anterior ao remoto,
// empate conta como atualizado. local.UpdatedAt é a hora da escrita local e só entra
// quando nenhum timestamp remoto foi gravado.
// Sem nenhum dos dois sinais não há como provar que a cópia está em dia.
func IsStale(local *domain.Entity, remote domain.RemoteEntity) bool {
	if local == nil {
		return true
	}

	if remote.Version != "" {
		return local.Version != remote.Version
	}

	if remote.LastModifiedAt != nil {
		if local.RemoteModifiedAt != nil {
			return local.RemoteModifiedAt.Before(*remote.LastModifiedAt)
		}
		return local.UpdatedAt.Before(*remote.LastModifiedAt)
	}

	return true
}

// StaleEntity é uma entidade remota marcada para escrita, com a cópia local quando existe
type StaleEntity struct {
	Remote domain.RemoteEntity
	Local  *domain.Entity
}

// FilterStale separa as entidades remotas em desatualizadas e inalteradas.
// unchanged traz os registros locais das entidades que não serão escritas.
func FilterStale(
	ctx context.Context,
	store EntityLookup,
	kind domain.EntityKind,
	accountID string,
	remotes []domain.RemoteEntity,
) (stale []StaleEntity, unchanged []*domain.Entity, err error) {
	if len(remotes) == 0 {
		return nil, nil, nil
	}

	ids := make([]string, 0, len(remotes))
	for _, r := range remotes {
		ids = append(ids, r.ExternalID)
	}

	locals, err := store.ListByExternalIDs(ctx, kind, accountID, ids)
	if err != nil {
		return nil, nil, err
	}

	byExternalID := make(map[string]*domain.Entity, len(locals))
	for _, l := range locals {
		byExternalID[l.ExternalID] = l
	}

	seen := make(map[string]struct{}, len(remotes))
	for _, remote := range remotes {
		// a mesma entidade pode vir em dois lotes
		if _, dup := seen[remote.ExternalID]; dup {
			continue
		}
		seen[remote.ExternalID] = struct{}{}

		local := byExternalID[remote.ExternalID]
		if IsStale(local, remote) {
			stale = append(stale, StaleEntity{Remote: remote, Local: local})
			continue
		}
		unchanged = append(unchanged, local)
	}

	return stale, unchanged, nil
}
