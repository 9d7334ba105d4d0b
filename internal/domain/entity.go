package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntityKind identifica o nível da hierarquia de anúncios
type EntityKind string

const (
	EntityKindCampaign EntityKind = "campaign"
	EntityKindAdGroup  EntityKind = "ad_group"
	EntityKindAd       EntityKind = "ad"
)

// EntityKinds lista os níveis na ordem em que a sincronização percorre a hierarquia
var EntityKinds = []EntityKind{EntityKindCampaign, EntityKindAdGroup, EntityKindAd}

// Parent retorna o nível pai. Campanhas pertencem diretamente à conta externa.
func (k EntityKind) Parent() (EntityKind, bool) {
	switch k {
	case EntityKindAdGroup:
		return EntityKindCampaign, true
	case EntityKindAd:
		return EntityKindAdGroup, true
	default:
		return "", false
	}
}

// HasChildren indica se o nível tem filhos na hierarquia
func (k EntityKind) HasChildren() bool {
	return k == EntityKindCampaign || k == EntityKindAdGroup
}

func (k EntityKind) Valid() bool {
	switch k {
	case EntityKindCampaign, EntityKindAdGroup, EntityKindAd:
		return true
	}
	return false
}

func (k EntityKind) String() string {
	return string(k)
}

// Entity é a cópia local de um objeto cuja fonte de verdade é a plataforma externa
type Entity struct {
	ID                  string          `json:"id"`
	Kind                EntityKind      `json:"kind"`
	AccountID           string          `json:"account_id"`
	ExternalID          string          `json:"external_id"`
	ParentID            *string         `json:"parent_id"`
	ParentExternalID    string          `json:"parent_external_id"`
	Name                string          `json:"name"`
	Status              string          `json:"status"`
	Version             string          `json:"version,omitempty"`
	RemoteModifiedAt    *time.Time      `json:"remote_modified_at,omitempty"`
	StartDate           *time.Time      `json:"start_date,omitempty"`
	Payload             json.RawMessage `json:"payload,omitempty"`
	NeedsReconciliation bool            `json:"needs_reconciliation"`
	// ChildrenPending fica ligado da escrita do pai até o nível filho ser gravado sem falhas
	ChildrenPending     bool            `json:"children_pending"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// IsOrphan indica que a referência ao pai não foi resolvida no momento da escrita
func (e *Entity) IsOrphan() bool {
	if e == nil {
		return false
	}
	_, hasParent := e.Kind.Parent()
	return hasParent && e.ParentID == nil
}

// RemoteEntity é o registro intermediário tipado produzido pelas funções de mapeamento
// de cada plataforma. Campos não modelados ficam em Payload.
type RemoteEntity struct {
	Kind             EntityKind
	ExternalID       string
	ParentExternalID string
	GroupExternalIDs []string
	Name             string
	Status           string
	Version          string
	LastModifiedAt   *time.Time
	StartDate        *time.Time
	Payload          json.RawMessage
}

// InGroups retorna verdadeiro quando a entidade pertence a algum dos grupos informados
func (r RemoteEntity) InGroups(groups map[string]struct{}) bool {
	for _, g := range r.GroupExternalIDs {
		if _, ok := groups[g]; ok {
			return true
		}
	}
	return false
}

// EntityKey é a chave de upsert: (tipo, conta, id externo)
type EntityKey struct {
	Kind       EntityKind
	AccountID  string
	ExternalID string
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Kind, k.AccountID, k.ExternalID)
}

func (e *Entity) Key() EntityKey {
	return EntityKey{Kind: e.Kind, AccountID: e.AccountID, ExternalID: e.ExternalID}
}
