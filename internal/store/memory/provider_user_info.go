package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type providerInfoKey struct{ providerID, userID string }

type providerUserInfoRepo struct {
	mu    sync.RWMutex
	infos map[providerInfoKey]repository.ProviderUserInfo
}

func newProviderUserInfoRepo() *providerUserInfoRepo {
	return &providerUserInfoRepo{infos: map[providerInfoKey]repository.ProviderUserInfo{}}
}

func (r *providerUserInfoRepo) FindByUserID(_ context.Context, userID string) ([]*repository.ProviderUserInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*repository.ProviderUserInfo
	for k, info := range r.infos {
		if k.userID == userID {
			cp := info
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProviderID < out[j].ProviderID })
	return out, nil
}

func (r *providerUserInfoRepo) FindByProviderAndSubject(_ context.Context, providerID, subject string) (*repository.ProviderUserInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k, info := range r.infos {
		if k.providerID == providerID && info.UserInfo.Subject == subject {
			cp := info
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *providerUserInfoRepo) Upsert(_ context.Context, info *repository.ProviderUserInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos[providerInfoKey{info.ProviderID, info.UserID}] = *info
	return nil
}
