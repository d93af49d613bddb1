package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	xoauth2 "golang.org/x/oauth2"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

// maxUserInfoBody acota la respuesta de userinfo de un provider.
const maxUserInfoBody = 1 << 20

// UserInfoFetcher obtiene la user info de un provider y la proyecta a los
// claims estándar usando los paths configurados.
type UserInfoFetcher struct {
	infos   repository.ProviderUserInfoRepository
	Timeout time.Duration
}

func NewUserInfoFetcher(infos repository.ProviderUserInfoRepository) *UserInfoFetcher {
	return &UserInfoFetcher{infos: infos, Timeout: 10 * time.Second}
}

// Fetch llama al userinfo endpoint del provider con el access token del
// provider y extrae los claims configurados.
func (f *UserInfoFetcher) Fetch(ctx context.Context, p *EnabledProvider, token *xoauth2.Token) (*repository.UserInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	client := p.OAuth.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURI.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider %s: userinfo: %w", p.ID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider %s: userinfo: status %d", p.ID, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserInfoBody))
	if err != nil {
		return nil, fmt.Errorf("provider %s: userinfo: %w", p.ID, err)
	}
	return extractUserInfo(p, body)
}

// Store persiste la user info obtenida para que participe del merge.
func (f *UserInfoFetcher) Store(ctx context.Context, p *EnabledProvider, userID string, info *repository.UserInfo) error {
	return f.infos.Upsert(ctx, &repository.ProviderUserInfo{
		ProviderID: p.ID,
		UserID:     userID,
		UserInfo:   *info,
		ChangeDate: time.Now().UTC(),
	})
}

// extractUserInfo aplica los paths gjson del provider sobre el body.
// El subject es obligatorio; el resto de los claims son best-effort.
func extractUserInfo(p *EnabledProvider, body []byte) (*repository.UserInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("provider %s: userinfo: invalid json", p.ID)
	}
	get := func(claimID string) gjson.Result {
		path, ok := p.ClaimPaths[claimID]
		if !ok {
			return gjson.Result{}
		}
		return gjson.GetBytes(body, path)
	}

	sub := get(SubjectClaim)
	if !sub.Exists() || sub.String() == "" {
		return nil, fmt.Errorf("provider %s: userinfo: missing subject", p.ID)
	}

	info := &repository.UserInfo{Subject: sub.String()}
	str := func(claimID string, dst *string) {
		if v := get(claimID); v.Exists() {
			*dst = v.String()
		}
	}
	str(claims.Name, &info.Name)
	str(claims.GivenName, &info.GivenName)
	str(claims.FamilyName, &info.FamilyName)
	str(claims.MiddleName, &info.MiddleName)
	str(claims.Nickname, &info.Nickname)
	str(claims.PreferredUsername, &info.PreferredUsername)
	str(claims.Profile, &info.Profile)
	str(claims.Picture, &info.Picture)
	str(claims.Website, &info.Website)
	str(claims.Email, &info.Email)
	str(claims.Gender, &info.Gender)
	str(claims.BirthDate, &info.BirthDate)
	str(claims.ZoneInfo, &info.ZoneInfo)
	str(claims.Locale, &info.Locale)
	str(claims.PhoneNumber, &info.PhoneNumber)

	if v := get(claims.EmailVerified); v.Exists() {
		b := v.Bool()
		info.EmailVerified = &b
	}
	if v := get(claims.PhoneVerified); v.Exists() {
		b := v.Bool()
		info.PhoneNumberVerified = &b
	}
	if v := get(claims.UpdatedAt); v.Exists() {
		// updated_at viene como epoch seconds (OIDC) o como string RFC3339
		if v.Type == gjson.Number {
			t := time.Unix(v.Int(), 0).UTC()
			info.UpdatedAt = &t
		} else if t, err := time.Parse(time.RFC3339, v.String()); err == nil {
			t = t.UTC()
			info.UpdatedAt = &t
		}
	}
	return info, nil
}
