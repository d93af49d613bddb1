package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/user"
)

// ───────────────────────────────────────────────────────────────
// flow configuration
// ───────────────────────────────────────────────────────────────

type flowClaimDTO struct {
	ID            string   `json:"id"`
	DataType      string   `json:"data_type"`
	Group         string   `json:"group"`
	Required      bool     `json:"required"`
	AllowedValues []string `json:"allowed_values,omitempty"`
}

type flowProviderDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type flowConfigurationDTO struct {
	Claims    []flowClaimDTO    `json:"claims"`
	Providers []flowProviderDTO `json:"providers"`
	Password  struct {
		Enabled bool `json:"enabled"`
	} `json:"password"`
	ValidationMedia []string `json:"validation_media"`
}

const flowConfigurationCacheKey = "flow:configuration"

// HandleFlowConfiguration expone la configuración que la UI necesita para
// renderizar el flujo: claims colectables, providers habilitados y medios de
// validación. Requiere un state válido (la UI solo existe dentro de un
// attempt). La respuesta es idéntica para todos los attempts, así que se
// cachea serializada.
func HandleFlowConfiguration(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := d.Flow.Authorize().VerifyEncodedState(r.Context(), r.URL.Query().Get("state")); err != nil {
			WriteAppError(w, r, err)
			return
		}

		if d.Cache != nil {
			if cached, ok := d.Cache.Get(flowConfigurationCacheKey); ok {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(cached)
				return
			}
		}

		var dto flowConfigurationDTO
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			for _, c := range d.Registry.ListCollectable() {
				dto.Claims = append(dto.Claims, flowClaimDTO{
					ID:            c.ID,
					DataType:      string(c.DataType),
					Group:         string(c.Group),
					Required:      c.Required,
					AllowedValues: c.AllowedValues,
				})
			}
			return nil
		})
		g.Go(func() error {
			for _, p := range d.Flow.Providers().ListEnabled(ctx) {
				dto.Providers = append(dto.Providers, flowProviderDTO{ID: p.ID, Name: p.Name})
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			WriteAppError(w, r, err)
			return
		}
		dto.Password.Enabled = true
		for _, m := range d.EnabledMedia {
			dto.ValidationMedia = append(dto.ValidationMedia, string(m))
		}

		body, err := json.Marshal(dto)
		if err != nil {
			WriteAppError(w, r, err)
			return
		}
		if d.Cache != nil {
			d.Cache.Set(flowConfigurationCacheKey, body, 5*time.Minute)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// ───────────────────────────────────────────────────────────────
// sign-in / sign-up con password
// ───────────────────────────────────────────────────────────────

type redirectDTO struct {
	RedirectURL string `json:"redirect_url"`
}

// withAttempt resuelve el state firmado del body y delega en el handler.
func withAttempt(d *Deps, state string, w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, attempt *repository.AuthorizeAttempt) error) {
	attempt, err := d.Flow.Authorize().VerifyEncodedState(r.Context(), state)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	if err := fn(r.Context(), attempt); err != nil {
		WriteAppError(w, r, err)
		return
	}
	target, err := d.Flow.RedirectURI(r.Context(), attempt)
	if err != nil {
		WriteAppError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, redirectDTO{RedirectURL: target})
}

// HandleSignIn autentica con email + password y devuelve el próximo redirect
// del flujo.
func HandleSignIn(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			State    string `json:"state"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !ReadJSON(w, r, &req) {
			return
		}
		withAttempt(d, req.State, w, r, func(ctx context.Context, attempt *repository.AuthorizeAttempt) error {
			return d.Flow.SignInWithPassword(ctx, attempt, req.Email, req.Password)
		})
	}
}

// HandleSignUp crea la cuenta y la asocia al attempt.
func HandleSignUp(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			State    string `json:"state"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !ReadJSON(w, r, &req) {
			return
		}
		withAttempt(d, req.State, w, r, func(ctx context.Context, attempt *repository.AuthorizeAttempt) error {
			return d.Flow.SignUpWithPassword(ctx, attempt, req.Email, req.Password)
		})
	}
}

// ───────────────────────────────────────────────────────────────
// colecta y validación de claims
// ───────────────────────────────────────────────────────────────

// HandleCollectClaims recibe los claims del formulario de colecta. Valor null
// borra el claim.
func HandleCollectClaims(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			State  string             `json:"state"`
			Claims map[string]*string `json:"claims"`
		}
		if !ReadJSON(w, r, &req) {
			return
		}
		updates := make([]user.ClaimUpdate, 0, len(req.Claims))
		for id, v := range req.Claims {
			updates = append(updates, user.ClaimUpdate{ClaimID: id, Value: v})
		}
		withAttempt(d, req.State, w, r, func(ctx context.Context, attempt *repository.AuthorizeAttempt) error {
			return d.Flow.CollectClaims(ctx, attempt, updates)
		})
	}
}

type validationCodesDTO struct {
	Codes []validationCodeDTO `json:"codes"`
}

type validationCodeDTO struct {
	Media          string    `json:"media"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// HandleSendValidationCodes asegura codes vigentes para las validaciones
// pendientes del attempt. Idempotente: la UI puede repetirlo al recargar.
func HandleSendValidationCodes(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			State string `json:"state"`
		}
		if !ReadJSON(w, r, &req) {
			return
		}
		attempt, err := d.Flow.Authorize().VerifyEncodedState(r.Context(), req.State)
		if err != nil {
			WriteAppError(w, r, err)
			return
		}
		codes, err := d.Flow.GetOrSendValidationCodes(r.Context(), attempt)
		if err != nil {
			WriteAppError(w, r, err)
			return
		}
		var dto validationCodesDTO
		for _, c := range codes {
			dto.Codes = append(dto.Codes, validationCodeDTO{
				Media:          string(c.Media),
				ExpirationDate: c.ExpirationDate,
			})
		}
		WriteJSON(w, http.StatusOK, dto)
	}
}

// HandleValidateClaims valida el código ingresado y devuelve el próximo
// redirect.
func HandleValidateClaims(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			State string `json:"state"`
			Media string `json:"media"`
			Code  string `json:"code"`
		}
		if !ReadJSON(w, r, &req) {
			return
		}
		withAttempt(d, req.State, w, r, func(ctx context.Context, attempt *repository.AuthorizeAttempt) error {
			return d.Flow.ValidateClaimsByCode(ctx, attempt, repository.ValidationCodeMedia(req.Media), req.Code)
		})
	}
}

// HandleResendValidationCodes reemite y reenvía el code de un medio.
func HandleResendValidationCodes(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			State string `json:"state"`
			Media string `json:"media"`
		}
		if !ReadJSON(w, r, &req) {
			return
		}
		attempt, err := d.Flow.Authorize().VerifyEncodedState(r.Context(), req.State)
		if err != nil {
			WriteAppError(w, r, err)
			return
		}
		if err := d.Flow.ResendValidationCodes(r.Context(), attempt, repository.ValidationCodeMedia(req.Media)); err != nil {
			WriteAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ───────────────────────────────────────────────────────────────
// providers third-party
// ───────────────────────────────────────────────────────────────

// HandleProviderRedirect manda al end-user al provider elegido.
func HandleProviderRedirect(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempt, err := d.Flow.Authorize().VerifyEncodedState(r.Context(), r.URL.Query().Get("state"))
		if err != nil {
			WriteAppError(w, r, err)
			return
		}
		target, err := d.Flow.ProviderAuthorizeURL(r.Context(), attempt, chi.URLParam(r, "providerID"))
		if err != nil {
			WriteAppError(w, r, err)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// HandleProviderCallback completa el leg del provider y retoma el flujo. El
// state que vuelve del provider es nuestro state firmado.
func HandleProviderCallback(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		attempt, err := d.Flow.Authorize().VerifyEncodedState(r.Context(), q.Get("state"))
		if err != nil {
			WriteAppError(w, r, err)
			return
		}
		if errCode := q.Get("error"); errCode != "" {
			// El provider rechazó: devolvemos el error al cliente.
			http.Redirect(w, r, d.Flow.ErrorRedirectURI(attempt, "access_denied", errCode), http.StatusFound)
			return
		}
		if err := d.Flow.SignInWithProvider(r.Context(), attempt, chi.URLParam(r, "providerID"), q.Get("code")); err != nil {
			WriteAppError(w, r, err)
			return
		}
		target, err := d.Flow.RedirectURI(r.Context(), attempt)
		if err != nil {
			WriteAppError(w, r, err)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}
