package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sympauthy/sympauthy/internal/cache"
	memcache "github.com/sympauthy/sympauthy/internal/cache/memory"
	redcache "github.com/sympauthy/sympauthy/internal/cache/redis"
	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/config"
	"github.com/sympauthy/sympauthy/internal/config/resolved"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/email"
	"github.com/sympauthy/sympauthy/internal/flow"
	ihttp "github.com/sympauthy/sympauthy/internal/http"
	"github.com/sympauthy/sympauthy/internal/jwt"
	"github.com/sympauthy/sympauthy/internal/oauth2"
	"github.com/sympauthy/sympauthy/internal/observability/logger"
	"github.com/sympauthy/sympauthy/internal/provider"
	"github.com/sympauthy/sympauthy/internal/rate"
	"github.com/sympauthy/sympauthy/internal/security/password"
	"github.com/sympauthy/sympauthy/internal/store"
	"github.com/sympauthy/sympauthy/internal/user"
	"github.com/sympauthy/sympauthy/internal/validationcode"
)

var version = "dev"

func main() {
	// .env opcional: en producción todo llega por entorno real.
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:   "sympauthy",
		Short: "Authorization server OAuth2 / OpenID Connect",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "ruta al archivo de configuración")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}

	var keyPath string
	keygenCmd := &cobra.Command{
		Use:   "keygen",
		Short: "Genera (o carga) la clave de firma Ed25519 y muestra su kid",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyPath == "" {
				return fmt.Errorf("falta --out con la ruta del PEM")
			}
			keys, err := jwt.LoadOrGenerate(keyPath)
			if err != nil {
				return err
			}
			fmt.Printf("kid=%s alg=%s path=%s\n", keys.KID, keys.Alg, keyPath)
			return nil
		},
	}
	keygenCmd.Flags().StringVar(&keyPath, "out", "", "ruta del archivo PEM de la clave")

	root.AddCommand(serveCmd, keygenCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logEnv := "prod"
	if cfg.App.Env == "dev" || cfg.Log.Format == "console" {
		logEnv = "dev"
	}
	logger.Init(logger.Config{
		Env:         logEnv,
		Level:       cfg.Log.Level,
		ServiceName: "sympauthy",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Resolución de configuración: loguea TODOS los errores juntos. Las
	// secciones rotas quedan deshabilitadas y fallan recién al usarse: el
	// server levanta igual y los endpoints dependientes responden el error
	// de configuración por request.
	res := resolved.Resolve(cfg)
	res.Check(ctx)
	registry := claims.NewRegistry(nil)
	if claimsCfg, err := res.Claims.Get(); err == nil {
		registry = claimsCfg.Registry
	}
	var clientList []oauth2.Client
	if clientsCfg, err := res.Clients.Get(); err == nil {
		clientList = clientsCfg.Clients
	}
	var enabledMedia []repository.ValidationCodeMedia
	if valCfg, err := res.Validation.Get(); err == nil {
		enabledMedia = valCfg.EnabledMedia
	}

	// ─────────────── storage ───────────────
	st, err := store.New(ctx, store.Config{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN})
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}

	// ─────────────── cache y rate limiting ───────────────
	var (
		appCache        cache.Cache
		codeSendLimiter rate.Limiter
		submitLimiter   rate.Limiter
	)
	switch cfg.Cache.Kind {
	case "redis":
		rc := redcache.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB)
		appCache = rc
		if cfg.Rate.Enabled {
			prefix := cfg.Cache.Redis.Prefix + "rl:"
			codeSendLimiter = rate.NewRedisLimiter(rc.Client(), prefix,
				cfg.Rate.CodeSend.Limit, config.Dur(cfg.Rate.CodeSend.Window))
			submitLimiter = rate.NewRedisLimiter(rc.Client(), prefix,
				cfg.Rate.Submit.Limit, config.Dur(cfg.Rate.Submit.Window))
		}
	default:
		appCache = memcache.New(config.Dur(cfg.Cache.Memory.DefaultTTL))
		if cfg.Rate.Enabled {
			codeSendLimiter = rate.NewMemoryLimiter(cfg.Rate.CodeSend.Limit, config.Dur(cfg.Rate.CodeSend.Window))
			submitLimiter = rate.NewMemoryLimiter(cfg.Rate.Submit.Limit, config.Dur(cfg.Rate.Submit.Window))
		}
	}

	// ─────────────── HTTP deps ───────────────
	deps := &ihttp.Deps{
		Config:             res,
		Registry:           registry,
		EnabledMedia:       enabledMedia,
		Cache:              appCache,
		CodeSendLimiter:    codeSendLimiter,
		SubmitLimiter:      submitLimiter,
		Ping:               st.Ping,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}

	// ─────────────── firma de tokens y managers ───────────────
	// Solo se arma lo que la configuración permite: con auth o urls rotas los
	// deps correspondientes quedan nil y el router corta antes de tocarlos.
	if authCfg, err := res.Auth.Get(); err == nil {
		keys, err := jwt.LoadOrGenerate(authCfg.KeyPath)
		if err != nil {
			return fmt.Errorf("jwt: %w", err)
		}
		issuer := jwt.NewIssuer(authCfg.Issuer, keys)
		issuer.AccessTTL = authCfg.AccessTTL
		logger.L().Info("signing key ready", logger.String("kid", keys.KID))

		clientReg := oauth2.NewClientRegistry(clientList)
		authorize := oauth2.NewAuthorizeManager(st.Attempts, clientReg, issuer)
		authorize.AttemptTTL = authCfg.AttemptTTL
		authCodes := oauth2.NewAuthorizationCodeManager(st.AuthorizationCodes)
		authCodes.CodeTTL = authCfg.AuthorizationCodeTTL
		tokens := oauth2.NewTokenManager(st.Tokens, st.Attempts, authCodes, clientReg, issuer)
		tokens.AccessTTL = authCfg.AccessTTL
		tokens.RefreshTTL = authCfg.RefreshTTL

		deps.Issuer = issuer
		deps.IssuerURL = authCfg.Issuer
		deps.Clients = clientReg
		deps.Tokens = tokens

		if urlsCfg, err := res.Urls.Get(); err == nil {
			hasher := password.NewArgon2id()
			merger := user.NewMerger(registry)
			collected := user.NewCollectedClaimManager(st.CollectedClaims, registry)
			users := user.NewManager(st.Users, hasher)

			senders := map[repository.ValidationCodeMedia]validationcode.Sender{}
			for _, m := range enabledMedia {
				switch m {
				case repository.MediaEmail:
					senders[m] = email.NewValidationCodeSender(email.NewSMTPSender(email.SMTPConfig{
						Host:               cfg.SMTP.Host,
						Port:               cfg.SMTP.Port,
						Username:           cfg.SMTP.Username,
						Password:           cfg.SMTP.Password,
						FromEmail:          cfg.SMTP.From,
						TLSMode:            cfg.SMTP.TLS,
						InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
					}))
				case repository.MediaPhone:
					senders[m] = validationcode.LogSMSSender{}
				}
			}
			codes := validationcode.NewManager(st.ValidationCodes, senders)
			codes.CodeTTL = authCfg.ValidationCodeTTL
			codes.Digits = authCfg.ValidationCodeDigits

			raw := make([]provider.RawProvider, 0, len(cfg.Providers))
			for _, pc := range cfg.Providers {
				raw = append(raw, provider.RawProvider{
					ID:               pc.ID,
					Name:             pc.Name,
					ClientID:         pc.ClientID,
					ClientSecret:     pc.ClientSecret,
					AuthorizationURL: pc.AuthorizationURL,
					TokenURL:         pc.TokenURL,
					UserInfoURL:      pc.UserInfoURL,
					RedirectURL:      pc.RedirectURL,
					Scopes:           pc.Scopes,
					Claims:           pc.Claims,
					Enabled:          pc.Enabled,
				})
			}
			resolver := provider.NewResolver(raw)
			fetcher := provider.NewUserInfoFetcher(st.ProviderUserInfo)

			deps.Flow = flow.NewManager(
				registry, merger, collected, users, st.ProviderUserInfo,
				codes, authorize, authCodes, resolver, fetcher,
				flow.UIConfig{
					SignInURL:        urlsCfg.SignIn,
					CollectClaimsURL: urlsCfg.CollectClaims,
					ValidateCodeURL:  urlsCfg.ValidateCode,
					ErrorURL:         urlsCfg.Error,
				},
				enabledMedia,
			)
		}
	}

	srv := ihttp.NewServer(cfg.Server.Addr, ihttp.NewRouter(deps))
	return srv.Run(ctx)
}
