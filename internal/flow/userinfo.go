package flow

import (
	"context"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/domain/apperr"
)

// UserInfo arma la respuesta del userinfo endpoint: la identidad mergeada del
// usuario filtrada por los scopes del access token, más sub y updated_at.
func (m *Manager) UserInfo(ctx context.Context, userID string, scopes []string) (map[string]any, error) {
	providerInfos, err := m.providers.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("flow.userinfo.providers").Wrap(err)
	}
	collected, err := m.collected.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	merged := m.merger.Merge(providerInfos, collected)

	out := merged.Filter(m.registry, scopes)
	out["sub"] = userID
	if merged.UpdatedAt != nil {
		out[claims.UpdatedAt] = merged.UpdatedAt.Unix()
	}
	return out, nil
}
