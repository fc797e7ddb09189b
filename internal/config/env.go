package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TIMESINCE_STORE_PATH.
const EnvPrefix = "TIMESINCE"

// Load reads the TOML file at path and overlays TIMESINCE_* environment
// variables on top of it.
func Load(path string) (FileConfig, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return FileConfig{}, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with values set in the environment. Keys follow
// the file layout: [ui] swap-delay becomes TIMESINCE_UI_SWAP_DELAY.
func ApplyEnv(cfg *FileConfig) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	envString(v, "store.driver", &cfg.Store.Driver)
	envString(v, "store.path", &cfg.Store.Path)
	envString(v, "server.addr", &cfg.Server.Addr)
	envString(v, "server.site-url", &cfg.Server.SiteURL)
	envString(v, "share.command", &cfg.Share.Command)

	for key, target := range map[string]**Duration{
		"ui.swap-delay":    &cfg.UI.SwapDelay,
		"ui.settle-delay":  &cfg.UI.SettleDelay,
		"ui.tick":          &cfg.UI.Tick,
		"auth.session-ttl": &cfg.Auth.SessionTTL,
	} {
		if err := envDuration(v, key, target); err != nil {
			return err
		}
	}
	return nil
}

func envString(v *viper.Viper, key string, target **string) {
	if !v.IsSet(key) {
		return
	}
	s := v.GetString(key)
	*target = &s
}

func envDuration(v *viper.Viper, key string, target **Duration) error {
	if !v.IsSet(key) {
		return nil
	}
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fmt.Errorf("failed to parse %s_%s: %w", EnvPrefix,
			strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key)), err)
	}
	*target = &Duration{Duration: d}
	return nil
}
