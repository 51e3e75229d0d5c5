package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spymsg/spymsg-go/application"
)

// A rootCommand is used to create a spymsg executable's
// root command that executes all subcommands.
type rootCommand struct {
	use   string
	short string
	long  string
}

var _ cobraCommand = (*rootCommand)(nil)

// NewRootCommand constructs a new root command for the given
// executable's use, short and long descriptions.
func NewRootCommand(use, short, long string) *cobra.Command {
	rootCmd := &rootCommand{
		use:   use,
		short: short,
		long:  long,
	}
	return rootCmd.Build()
}

// Build constructs the cobra.Command according to the
// rootCommand's settings.
func (rootCmd *rootCommand) Build() *cobra.Command {
	cmd := cobra.Command{
		Use:           rootCmd.use,
		Short:         rootCmd.short,
		Long:          rootCmd.long,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	return &cmd
}

// ExecuteRoot runs rootCmd, prints the error of a failed command
// and exits with a non-zero status.
func ExecuteRoot(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(-1)
	}
}

// AddConfigFlags adds the --config and --encoding flags to cmd.
func AddConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "Path to the configuration file (default config.<encoding>)")
	cmd.Flags().StringP("encoding", "e", "toml", "Encoding of the configuration file (toml or yaml)")
}

// LoadConfig loads conf from the file given by cmd's --config and
// --encoding flags.
func LoadConfig(cmd *cobra.Command, conf application.AppConfig) error {
	encoding, file, err := ConfigFile(cmd, ".")
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("config") {
		file = cmd.Flag("config").Value.String()
	}
	if err := conf.Load(file, encoding); err != nil {
		return fmt.Errorf("Couldn't load config %s: %v", file, err)
	}
	return nil
}

// ConfigFile returns the encoding given by cmd's --encoding flag and
// the default config file name for it in dir.
func ConfigFile(cmd *cobra.Command, dir string) (string, string, error) {
	encoding := cmd.Flag("encoding").Value.String()
	for _, e := range application.Encodings() {
		if e == encoding {
			return encoding, filepath.Join(dir, "config."+encoding), nil
		}
	}
	return "", "", fmt.Errorf("Unknown encoding %q", encoding)
}
