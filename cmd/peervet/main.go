// Note: //go:debug x509negativeserial=1 is desired when building with Go
// 1.23+ (which rejects negative serial numbers by default); Go 1.21 does not
// recognize the setting and accepts negative serials by default.

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Process exit codes.
const (
	ExitSuccess    = 0
	ExitInputError = 1
	ExitTrustFail  = 2
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "peervet",
	Short: "Evaluate trust in TLS peer certificates",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(vetCmd)
	rootCmd.AddCommand(issuersCmd)
	rootCmd.AddCommand(identitiesCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitInputError)
	}
}
