package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind         string
	codeLength   int
	databaseUrl  string
	jwtSecret    string
	openAiKey    string
	openAiModel  string
	port         int
	prefix       string
	profile      bool
	replyTimeout time.Duration
	roomTimeout  time.Duration
	tlsCert      string
	tlsKey       string
	verbose      bool
	version      bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.codeLength < 4 || c.codeLength > 16 {
		return fmt.Errorf("invalid room code length (must be between 4-16 inclusive): %d", c.codeLength)
	}
	if c.replyTimeout <= 0 {
		return fmt.Errorf("invalid reply timeout: %s", c.replyTimeout)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SLEUTHBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "sleuthbox",
		Short:         "A multiplayer murder-mystery interrogation server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SLEUTHBOX_BIND)")
	fs.IntVar(&cfg.codeLength, "code-length", 6, "length of generated room codes (env: SLEUTHBOX_CODE_LENGTH)")
	fs.StringVar(&cfg.databaseUrl, "database-url", "", "postgres connection string for best-effort persistence (env: SLEUTHBOX_DATABASE_URL)")
	fs.StringVar(&cfg.jwtSecret, "jwt-secret", "", "shared secret for verifying join tokens (env: SLEUTHBOX_JWT_SECRET)")
	fs.StringVar(&cfg.openAiKey, "openai-api-key", "", "api key for the automated answerer (env: SLEUTHBOX_OPENAI_API_KEY)")
	fs.StringVar(&cfg.openAiModel, "openai-model", "gpt-4o-mini", "model used by the automated answerer (env: SLEUTHBOX_OPENAI_MODEL)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SLEUTHBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: SLEUTHBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: SLEUTHBOX_PROFILE)")
	fs.DurationVar(&cfg.replyTimeout, "reply-timeout", 2*time.Minute, "time to wait for a human murderer reply before falling back (env: SLEUTHBOX_REPLY_TIMEOUT)")
	fs.DurationVar(&cfg.roomTimeout, "room-timeout", 2*time.Hour, "time before idle empty rooms are reaped (env: SLEUTHBOX_ROOM_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: SLEUTHBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: SLEUTHBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SLEUTHBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: SLEUTHBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("sleuthbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
