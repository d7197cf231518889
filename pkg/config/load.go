package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PERFH_OUTPUT_DIR.
const EnvPrefix = "PERFH"

// Load overlays a YAML config file and PERFH_* environment variables onto
// flags the user did not set explicitly. Keys are flag names; dashes may be
// written as underscores in the file. An empty file skips the file layer.
func Load(v *viper.Viper, flags *pflag.FlagSet, file string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		key, ok := lookup(v, f.Name)
		if !ok {
			return
		}
		if err := apply(flags, f, v, key); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalid, f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// apply sets f from key. Slice flags take YAML lists as well as
// comma-separated strings.
func apply(flags *pflag.FlagSet, f *pflag.Flag, v *viper.Viper, key string) error {
	sv, ok := f.Value.(pflag.SliceValue)
	if !ok {
		return flags.Set(f.Name, v.GetString(key))
	}
	if err := sv.Replace(splitList(v.GetStringSlice(key))); err != nil {
		return err
	}
	f.Changed = true
	return nil
}

// splitList flattens comma-separated items, as given by environment
// variables, into one list.
func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func lookup(v *viper.Viper, name string) (string, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		if v.IsSet(key) {
			return key, true
		}
	}
	return "", false
}
