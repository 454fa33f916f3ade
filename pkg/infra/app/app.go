// Package app bootstraps a command line service with Cobra, Viper and Pflag.
//
// Configuration precedence, lowest first: option defaults, config file,
// NAME_* environment variables, explicitly set flags.
//
//	a := app.NewApp(
//	    app.WithName("naughty-assistant"),
//	    app.WithDescription("Sassy AI assistant backend"),
//	    app.WithOptions(opts),
//	    app.WithRunFunc(run),
//	)
//	a.Run()
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"

	"github.com/kart-io/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CliOptions is what an App needs from its option set. Complete runs after
// config and env are merged, Validate after Complete.
type CliOptions interface {
	AddFlags(fs *pflag.FlagSet)
	Complete() error
	Validate() error
}

// App wires a CliOptions set and a RunFunc into a cobra command.
type App struct {
	name      string
	short     string
	long      string
	envPrefix string

	options CliOptions
	run     RunFunc

	withoutVersion bool
	withoutConfig  bool

	cmd   *cobra.Command
	viper *viper.Viper
}

// RunFunc is the service body. ctx is cancelled on SIGINT or SIGTERM.
type RunFunc func(ctx context.Context) error

type Option func(*App)

// WithName names the command, its config file and its env prefix.
func WithName(name string) Option { return func(a *App) { a.name = name } }

func WithShortDescription(desc string) Option { return func(a *App) { a.short = desc } }

func WithDescription(desc string) Option { return func(a *App) { a.long = desc } }

func WithOptions(opts CliOptions) Option { return func(a *App) { a.options = opts } }

func WithRunFunc(run RunFunc) Option { return func(a *App) { a.run = run } }

// WithNoVersion drops the --version flag.
func WithNoVersion() Option { return func(a *App) { a.withoutVersion = true } }

// WithNoConfig skips config file and env loading.
func WithNoConfig() Option { return func(a *App) { a.withoutConfig = true } }

// NewApp builds the command. The env prefix is the upper-cased name with
// dashes turned into underscores.
func NewApp(opts ...Option) *App {
	a := &App{name: filepath.Base(os.Args[0]), viper: viper.New()}
	for _, o := range opts {
		o(a)
	}
	a.envPrefix = strings.ToUpper(strings.ReplaceAll(a.name, "-", "_"))

	a.cmd = &cobra.Command{
		Use:          a.name,
		Short:        a.short,
		Long:         a.long,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         a.runCommand,
	}
	a.cmd.SetOut(os.Stdout)
	a.cmd.SetErr(os.Stderr)

	if !a.withoutConfig {
		a.cmd.PersistentFlags().StringP("config", "c", "", "Config file; defaults to <name>.yaml in ., ./configs, ~/.<name> or /etc/<name>.")
	}
	if !a.withoutVersion {
		version.AddFlags(a.cmd.PersistentFlags())
	}
	if a.options != nil {
		a.options.AddFlags(a.cmd.Flags())
	}
	return a
}

func (a *App) runCommand(cmd *cobra.Command, _ []string) error {
	if !a.withoutVersion {
		version.PrintAndExitIfRequested()
	}

	if !a.withoutConfig {
		if err := a.loadConfig(cmd); err != nil {
			return err
		}
	}

	if a.options != nil {
		if err := a.options.Complete(); err != nil {
			return err
		}
		if err := a.options.Validate(); err != nil {
			return err
		}
	}

	if a.run == nil {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.run(ctx)
}

// loadConfig loads configuration from file, environment, and flags.
func (a *App) loadConfig(cmd *cobra.Command) error {
	v := a.viper
	configFile, _ := cmd.Flags().GetString("config")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(a.name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+a.name))
		}
		v.AddConfigPath("/etc/" + a.name)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	expandEnvVars(v)

	v.SetEnvPrefix(a.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if a.options == nil {
		return nil
	}

	// 记录显式设置的 flag，Unmarshal 之后重新应用以保证 flag 优先级最高
	changed := make(map[string]string)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})

	// 让环境变量参与 Unmarshal：viper 只认识已知 key
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		_ = v.BindEnv(f.Name)
	})

	if err := v.Unmarshal(a.options); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for name, val := range changed {
		if err := cmd.Flags().Set(name, val); err != nil {
			return fmt.Errorf("failed to re-apply flag %s: %w", name, err)
		}
	}
	return nil
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars expands ${VAR} and $VAR references in string config values.
// Unset variables are left as written.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		expanded := envPattern.ReplaceAllStringFunc(strVal, func(match string) string {
			name := strings.TrimPrefix(match, "$")
			name = strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
			if envVal, ok := os.LookupEnv(name); ok {
				return envVal
			}
			return match
		})
		if expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

// Run executes the command and exits 1 on error.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *App) Command() *cobra.Command { return a.cmd }
