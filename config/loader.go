package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/shellwrap/logger"
)

// FileSystem is the part of the OS the loader touches; tests swap it out.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	Getwd() (string, error)
	UserConfigDir() (string, error)
}

type osFS struct{}

func (osFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv sets variables from a dotenv file without overriding ones that
// are already set.
func (osFS) LoadEnv(path string) error { return godotenv.Load(path) }

func (osFS) Getwd() (string, error) { return os.Getwd() }

func (osFS) UserConfigDir() (string, error) { return os.UserConfigDir() }

// Sources names the files a configuration is read from. Empty means none.
type Sources struct {
	ConfigFile string
	EnvFile    string
}

// Locator finds the config and dotenv files of an application.
type Locator struct {
	FS FileSystem
}

// Locate fills the empty fields of explicit by searching:
//
//	./.shellwrap.yml, ./shellwrap.yml, ../.shellwrap.yml, ... up to /
//	$XDG_CONFIG_HOME/shellwrap/config.yml
//	./.env.shellwrap, ./.env
func (l *Locator) Locate(appName string, explicit Sources) Sources {
	found := explicit
	if found.ConfigFile == "" {
		found.ConfigFile = l.configFile(appName)
	}
	if found.EnvFile == "" {
		found.EnvFile = l.envFile(appName)
	}
	return found
}

func (l *Locator) configFile(appName string) string {
	var candidates []string
	if wd, err := l.FS.Getwd(); err == nil {
		for _, dir := range ancestors(wd) {
			for _, name := range []string{"." + appName, appName} {
				candidates = append(candidates,
					filepath.Join(dir, name+".yml"),
					filepath.Join(dir, name+".yaml"))
			}
		}
	}
	if base, err := l.FS.UserConfigDir(); err == nil && base != "" {
		candidates = append(candidates,
			filepath.Join(base, appName, "config.yml"),
			filepath.Join(base, appName, "config.yaml"))
	}
	return l.first(candidates)
}

func (l *Locator) envFile(appName string) string {
	wd, err := l.FS.Getwd()
	if err != nil {
		return ""
	}
	return l.first([]string{
		filepath.Join(wd, ".env."+appName),
		filepath.Join(wd, ".env"),
	})
}

func (l *Locator) first(paths []string) string {
	for _, p := range paths {
		if l.FS.Exists(p) {
			return p
		}
	}
	return ""
}

// ancestors returns dir followed by each of its parents up to the root.
func ancestors(dir string) []string {
	dir = filepath.Clean(dir)
	out := []string{dir}
	for parent := filepath.Dir(dir); parent != dir; parent = filepath.Dir(dir) {
		out = append(out, parent)
		dir = parent
	}
	return out
}

type loadOptions struct {
	fs       FileSystem
	explicit Sources
}

// Option customizes LoadConfig.
type Option func(*loadOptions)

// WithFileSystem replaces the OS file system.
func WithFileSystem(fs FileSystem) Option {
	return func(o *loadOptions) { o.fs = fs }
}

// WithConfigFile reads path instead of searching. The file must exist.
func WithConfigFile(path string) Option {
	return func(o *loadOptions) { o.explicit.ConfigFile = path }
}

// WithEnvFile loads path instead of searching for a dotenv file.
func WithEnvFile(path string) Option {
	return func(o *loadOptions) { o.explicit.EnvFile = path }
}

// LoadConfig unmarshals configuration for appName into cfg. Layers, lowest
// first: the YAML file, then APPNAME_-prefixed environment variables, with
// the dotenv file filling variables the environment does not set.
//
//	SHELLWRAP_EXEC_TIMEOUT=5s  ->  exec.timeout
func LoadConfig(appName string, cfg any, opts ...Option) error {
	o := loadOptions{fs: osFS{}}
	for _, opt := range opts {
		opt(&o)
	}
	if p := o.explicit.ConfigFile; p != "" && !o.fs.Exists(p) {
		return fmt.Errorf("config file %s not found", p)
	}
	src := (&Locator{FS: o.fs}).Locate(appName, o.explicit)

	v := viper.New()
	if src.ConfigFile != "" {
		v.SetConfigFile(src.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", src.ConfigFile, err)
		}
	}
	if src.EnvFile != "" && o.fs.Exists(src.EnvFile) {
		if err := o.fs.LoadEnv(src.EnvFile); err != nil {
			logger.Warn("failed to load .env file", logger.Fields(
				"path", src.EnvFile,
				logger.FieldError, err.Error(),
			))
		}
	}
	bindEnv(v, envPrefix(appName), os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode config for %s: %w", appName, err)
	}
	return nil
}

func envPrefix(appName string) string {
	return strings.ToUpper(strings.ReplaceAll(appName, "-", "_")) + "_"
}

// bindEnv sets every prefixed variable in environ under each key it could
// name. Keys that do not match a config field are ignored by Unmarshal.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		for _, k := range envKeys(strings.TrimPrefix(key, prefix)) {
			v.Set(k, value)
		}
	}
}

// envKeys lists the config keys an unprefixed variable name could refer to,
// since an underscore may separate sections or sit inside a field name:
//
//	EXEC_GRACE_PERIOD -> exec_grace_period, exec.grace.period, exec.grace_period
func envKeys(name string) []string {
	lower := strings.ToLower(name)
	parts := strings.Split(lower, "_")
	keys := []string{lower}
	for i := 1; i < len(parts); i++ {
		keys = append(keys, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	if len(parts) > 1 {
		keys = append(keys, strings.Join(parts, "."))
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}
