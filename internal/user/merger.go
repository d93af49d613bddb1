// Package user contiene la capa de identidad: el merge de user info entre
// providers y claims colectados, la gestión de collected claims y las cuentas
// de usuario.
package user

import (
	"sort"
	"time"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

// MergedUserInfo es el resultado del merge: valores por claim id más el
// updated_at agregado (el timestamp más reciente entre todas las fuentes).
type MergedUserInfo struct {
	values    map[string]any
	UpdatedAt *time.Time
}

// Get retorna el valor mergeado de un claim, si existe.
func (m *MergedUserInfo) Get(id string) (any, bool) {
	v, ok := m.values[id]
	return v, ok
}

// Filter retorna los claims legibles con los scopes otorgados, como los
// expone el userinfo endpoint.
func (m *MergedUserInfo) Filter(registry *claims.Registry, scopes []string) map[string]any {
	out := map[string]any{}
	for id, v := range m.values {
		c := registry.FindByID(id)
		if c == nil {
			// claims *_verified no están en el registry: heredan la
			// visibilidad del claim base
			if base := baseOfVerified(registry, id); base != nil && base.CanBeRead(scopes) {
				out[id] = v
			}
			continue
		}
		if c.CanBeRead(scopes) {
			out[id] = v
		}
	}
	return out
}

func baseOfVerified(registry *claims.Registry, verifiedID string) *claims.Claim {
	for _, c := range registry.List() {
		if c.VerifiedID == verifiedID {
			return c
		}
	}
	return nil
}

// Merger combina la user info de los providers con los collected claims.
type Merger struct {
	registry *claims.Registry
}

func NewMerger(registry *claims.Registry) *Merger {
	return &Merger{registry: registry}
}

// Merge pliega las fuentes de más vieja a más nueva, de modo que la fuente
// más reciente gana campo a campo. Reglas:
//   - providers se ordenan por updated_at, o change_date si el provider no
//     lo informa
//   - un valor en blanco nunca pisa un valor presente
//   - los collected claims (first-party) se aplican al final y siempre ganan
func (m *Merger) Merge(providerInfos []*repository.ProviderUserInfo, collected []*repository.CollectedClaim) *MergedUserInfo {
	merged := &MergedUserInfo{values: map[string]any{}}

	sorted := make([]*repository.ProviderUserInfo, len(providerInfos))
	copy(sorted, providerInfos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortKey(sorted[i]).Before(sortKey(sorted[j]))
	})

	for _, info := range sorted {
		for id, v := range standardClaimValues(&info.UserInfo) {
			merged.values[id] = v
		}
		merged.bumpUpdatedAt(sortKey(info))
	}

	for _, cc := range collected {
		claim := m.registry.FindByID(cc.ClaimID)
		if claim == nil {
			continue
		}
		merged.values[cc.ClaimID] = typedValue(claim, cc.Value)
		if claim.VerifiedID != "" {
			merged.values[claim.VerifiedID] = cc.Verified
		}
		merged.bumpUpdatedAt(cc.CollectionDate)
	}
	return merged
}

func (m *MergedUserInfo) bumpUpdatedAt(t time.Time) {
	if t.IsZero() {
		return
	}
	if m.UpdatedAt == nil || t.After(*m.UpdatedAt) {
		cp := t
		m.UpdatedAt = &cp
	}
}

func sortKey(info *repository.ProviderUserInfo) time.Time {
	if info.UserInfo.UpdatedAt != nil {
		return *info.UserInfo.UpdatedAt
	}
	return info.ChangeDate
}

// standardClaimValues proyecta una UserInfo a valores por claim id,
// omitiendo los campos en blanco.
func standardClaimValues(ui *repository.UserInfo) map[string]any {
	out := map[string]any{}
	put := func(id, v string) {
		if v != "" {
			out[id] = v
		}
	}
	put(claims.Name, ui.Name)
	put(claims.GivenName, ui.GivenName)
	put(claims.FamilyName, ui.FamilyName)
	put(claims.MiddleName, ui.MiddleName)
	put(claims.Nickname, ui.Nickname)
	put(claims.PreferredUsername, ui.PreferredUsername)
	put(claims.Profile, ui.Profile)
	put(claims.Picture, ui.Picture)
	put(claims.Website, ui.Website)
	put(claims.Email, ui.Email)
	put(claims.Gender, ui.Gender)
	put(claims.BirthDate, ui.BirthDate)
	put(claims.ZoneInfo, ui.ZoneInfo)
	put(claims.Locale, ui.Locale)
	put(claims.PhoneNumber, ui.PhoneNumber)
	if ui.EmailVerified != nil {
		out[claims.EmailVerified] = *ui.EmailVerified
	}
	if ui.PhoneNumberVerified != nil {
		out[claims.PhoneVerified] = *ui.PhoneNumberVerified
	}
	return out
}
