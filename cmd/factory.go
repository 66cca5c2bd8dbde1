package cmd

import (
	"fmt"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/cache"
	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/PCL-Community/craftauth/internal/config"
	"github.com/PCL-Community/craftauth/internal/logging"
	"github.com/PCL-Community/craftauth/internal/minecraft"
	"github.com/PCL-Community/craftauth/internal/msa"
	"github.com/PCL-Community/craftauth/internal/service"
	"github.com/PCL-Community/craftauth/internal/tokencache"
	"github.com/PCL-Community/craftauth/internal/xbox"
)

// Factory assembles the login pipeline from flags, env, the user
// config and the optional services config file. Everything is built
// once per invocation and passed by reference; there is no ambient
// shared state.
type Factory struct {
	// NoCache keeps the provider session in memory only.
	NoCache bool

	// Fresh skips silent reacquisition and forces the device-code flow.
	Fresh bool

	// NoBrowser suppresses auto-opening the verification URL.
	NoBrowser bool
}

func NewFactory() *Factory {
	return &Factory{}
}

// bindPipelineFlags registers the per-invocation pipeline switches on a
// command's flag set, writing straight into the factory fields.
func (f *Factory) bindPipelineFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&f.Fresh, "fresh", false, "Skip the cached session and force interactive sign-in")
	flags.BoolVar(&f.NoCache, "no-cache", false, "Do not persist the provider session to disk")
	flags.BoolVar(&f.NoBrowser, "no-browser", false, "Do not open the verification URL automatically")
}

// loadConfig merges the optional services config file under the viper
// settings: explicit flags and env win over file values.
func (f *Factory) loadConfig() (*config.Config, error) {
	cfg := &config.Config{}

	if servicesPath != "" {
		loaded, err := config.Load(servicesPath)
		if err != nil {
			return nil, fmt.Errorf("loading services config: %w", err)
		}
		cfg = loaded
	}

	if sub := viper.GetStringMap(ServicesKey); len(sub) > 0 {
		services, err := config.ServicesFromMap(sub)
		if err != nil {
			return nil, err
		}
		merge(&cfg.Services.XboxAuthURL, services.XboxAuthURL)
		merge(&cfg.Services.XstsAuthURL, services.XstsAuthURL)
		merge(&cfg.Services.MinecraftLoginURL, services.MinecraftLoginURL)
		merge(&cfg.Services.MinecraftProfileURL, services.MinecraftProfileURL)
	}

	merge(&cfg.MSA.ClientID, viper.GetString(ClientIDKey))
	merge(&cfg.MSA.Authority, viper.GetString(AuthorityKey))
	merge(&cfg.MSA.CachePath, viper.GetString(CachePathKey))

	if cfg.MSA.ClientID == "" {
		return nil, fmt.Errorf("client ID not configured (use --client-id or CRAFTAUTH_MSA_CLIENT_ID)")
	}
	return cfg, nil
}

// merge overwrites *dst when override is non-empty.
func merge(dst *string, override string) {
	if override != "" {
		*dst = override
	}
}

func (f *Factory) buildCache(cfg *config.Config) (cache.ExportReplace, error) {
	if f.NoCache {
		return tokencache.NewMemory(), nil
	}

	path := cfg.MSA.CachePath
	if path == "" {
		var err error
		if path, err = tokencache.DefaultPath(); err != nil {
			// cache trouble degrades to interactive login, never aborts
			log.Warn().Err(err).Msg("cannot resolve token cache path, session will not be saved")
			return tokencache.NewMemory(), nil
		}
	}
	return tokencache.NewFile(path), nil
}

func (f *Factory) devicePrompt() msa.PromptFunc {
	return func(p msa.DeviceCodePrompt) {
		fmt.Printf("\nTo sign in, visit %s and enter the code %s\n",
			bold(p.VerificationURL), bold(p.UserCode))
		fmt.Printf("The code expires at %s.\n\n", p.ExpiresOn.Local().Format("15:04:05"))

		if f.NoBrowser {
			return
		}
		if err := browser.OpenURL(p.VerificationURL); err != nil {
			log.Debug().Err(err).Msg("could not open browser, continue manually")
		}
	}
}

// GetLoginService wires the five pipeline stages.
func (f *Factory) GetLoginService() (*service.LoginService, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	credCache, err := f.buildCache(cfg)
	if err != nil {
		return nil, err
	}

	authOpts := []msa.Option{
		msa.WithCache(credCache),
		msa.WithPrompt(f.devicePrompt()),
		msa.WithForceInteractive(f.Fresh),
	}
	if cfg.MSA.Authority != "" {
		authOpts = append(authOpts, msa.WithAuthority(cfg.MSA.Authority))
	}

	authenticator, err := msa.New(cfg.MSA.ClientID, authOpts...)
	if err != nil {
		return nil, fmt.Errorf("building authenticator: %w", err)
	}

	var liveOpts []xbox.LiveOption
	if cfg.Services.XboxAuthURL != "" {
		liveOpts = append(liveOpts, xbox.WithLiveAuthURL(cfg.Services.XboxAuthURL))
	}
	var xstsOpts []xbox.XstsOption
	if cfg.Services.XstsAuthURL != "" {
		xstsOpts = append(xstsOpts, xbox.WithXstsAuthURL(cfg.Services.XstsAuthURL))
	}
	var loginOpts []minecraft.LoginOption
	if cfg.Services.MinecraftLoginURL != "" {
		loginOpts = append(loginOpts, minecraft.WithLoginURL(cfg.Services.MinecraftLoginURL))
	}
	var resolverOpts []minecraft.ResolverOption
	if cfg.Services.MinecraftProfileURL != "" {
		resolverOpts = append(resolverOpts, minecraft.WithProfileURL(cfg.Services.MinecraftProfileURL))
	}

	return service.NewLoginService(
		authenticator,
		xbox.NewLiveExchanger(liveOpts...),
		xbox.NewXstsExchanger(xstsOpts...),
		minecraft.NewLoginExchanger(loginOpts...),
		minecraft.NewResolver(resolverOpts...),
		logging.NewZLogger(log.Logger),
	), nil
}
