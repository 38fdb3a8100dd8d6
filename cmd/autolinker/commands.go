package autolinker

import (
	"embed"
	"fmt"
	"io"
	"io/fs"

	"github.com/Masterminds/semver/v3"
	"github.com/arthur-debert/jibs-autolinker/internal/version"
	"github.com/arthur-debert/jibs-autolinker/pkg/cobrax/topics"
	"github.com/arthur-debert/jibs-autolinker/pkg/commands"
	"github.com/arthur-debert/jibs-autolinker/pkg/logging"
	"github.com/arthur-debert/jibs-autolinker/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicsFS embed.FS

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	verbosity  int
	dryRun     bool
	format     string
	configFile string
	dir        string
}

func (o *globalOptions) commandOptions() commands.Options {
	return commands.Options{
		WorkDir:    o.dir,
		ConfigFile: o.configFile,
		DryRun:     o.dryRun,
	}
}

// NewRootCmd creates and returns the root command. Run without a
// subcommand it links, exactly like `link`.
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "jibs-autolinker",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgLinkExample,
		Version: version.Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")

			_, err := ui.ParseFormat(opts.format)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(cmd, opts)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	flags.StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	flags.StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	flags.StringVarP(&opts.dir, "dir", "C", "", MsgFlagDir)

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return ui.FormatNames, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.MarkPersistentFlagDirname("dir")
	_ = rootCmd.MarkPersistentFlagFilename("config", "json")

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newLinkCmd(opts))
	rootCmd.AddCommand(newCleanCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	topicFiles, err := fs.Sub(topicsFS, "topics")
	if err == nil {
		_, err = topics.Initialize(rootCmd, topicFiles, topics.Options{
			Renderer: topics.NewGlamourRenderer(),
		})
	}
	if err != nil {
		log.Debug().Err(err).Msg("Help topics unavailable")
	}
	rootCmd.SetHelpCommandGroupID("misc")

	return rootCmd
}

// Execute runs the root command with args and reports a failure on
// errOut in the format selected by --format. It returns the exit code.
func Execute(args []string, out, errOut io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	// An unparsable --format is itself the error being reported.
	name, _ := rootCmd.PersistentFlags().GetString("format")
	format, perr := ui.ParseFormat(name)
	if perr != nil {
		format = ui.FormatAuto
	}
	renderer, rerr := ui.NewRenderer(format, errOut)
	if rerr == nil {
		rerr = renderer.RenderError(err)
	}
	if rerr != nil {
		_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
	}
	return 1
}

func newLinkCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "link",
		Short:   MsgLinkShort,
		Long:    MsgLinkLong,
		Example: MsgLinkExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(cmd, opts)
		},
	}
}

func runLink(cmd *cobra.Command, opts *globalOptions) error {
	log.Info().
		Str("dir", opts.dir).
		Bool("dry_run", opts.dryRun).
		Msg("Linking modules")

	result, err := commands.Link(opts.commandOptions())
	if err != nil {
		if result != nil {
			log.Info().
				Int("removed", len(result.Removed)).
				Int("linked", len(result.Linked)).
				Msg("Stopped after partial sync")
		}
		return fmt.Errorf(MsgErrLink, err)
	}

	return render(cmd, opts, result)
}

func newCleanCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "clean",
		Short:   MsgCleanShort,
		Long:    MsgCleanLong,
		Example: MsgCleanExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.Clean(opts.commandOptions())
			if err != nil {
				return fmt.Errorf(MsgErrClean, err)
			}
			return render(cmd, opts, result)
		},
	}
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		Example: MsgStatusExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := commands.Status(opts.commandOptions())
			if err != nil {
				return fmt.Errorf(MsgErrStatus, err)
			}
			return render(cmd, opts, report)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, displayVersion(version.Version), version.Commit, version.Date)
		},
	}
}

// displayVersion normalises release versions to vMAJOR.MINOR.PATCH and
// leaves development builds alone
func displayVersion(v string) string {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return v
	}
	return "v" + parsed.String()
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func render(cmd *cobra.Command, opts *globalOptions, result interface{}) error {
	format, err := ui.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	renderer, err := ui.NewRenderer(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return renderer.RenderResult(result)
}
