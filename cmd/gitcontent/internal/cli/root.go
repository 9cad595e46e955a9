package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-gitcontent"
	"github.com/goliatone/go-gitcontent/cmd/gitcontent/internal/bootstrap"
)

// app carries state shared by the subcommands once the root pre-run has
// resolved configuration.
type app struct {
	configFile string
	viper      *viper.Viper
	cfg        cms.Config
	configUsed string
	opts       []cms.Option
}

// NewRootCommand assembles the gitcontent command tree.
func NewRootCommand(opts ...cms.Option) *cobra.Command {
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "gitcontent",
		Short:         "Render markdown collections from a Git repository into a page",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./gitcontent.yaml)")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.String("log-provider", "", "log provider (console, gologger, none)")
	flags.String("source", "", "source provider (github, local)")
	flags.String("root", "", "content root for the local source")

	root.AddCommand(newServeCommand(a), newBuildCommand(a), newPreviewCommand(a))
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	v := bootstrap.NewViper(a.configFile)
	bindings := map[string]string{
		"logging.level":     "log-level",
		"logging.provider":  "log-provider",
		"source.provider":   "source",
		"source.local_root": "root",
		"server.addr":       "addr",
		"refresh.watch":     "watch",
		"output.path":       "output",
	}
	for key, name := range bindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	cfg, used, err := bootstrap.LoadConfig(v, a.configFile != "")
	if err != nil {
		return err
	}
	a.viper = v
	a.cfg = cfg
	a.configUsed = used
	return nil
}

func (a *app) module() (*cms.Module, error) {
	module, err := cms.New(a.cfg, a.opts...)
	if err != nil {
		return nil, fmt.Errorf("configure gitcontent: %w", err)
	}
	return module, nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
