package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivoronin/peervet/internal/fetcher"
	"github.com/ivoronin/peervet/internal/output"
	"github.com/ivoronin/peervet/internal/session"
)

var (
	issuersJSON    bool
	issuersTimeout time.Duration
)

var issuersCmd = &cobra.Command{
	Use:   "issuers <endpoint>",
	Short: "List the CAs an endpoint accepts client certificates from",
	Long:  `Connect to endpoint over TLS and list the certificate authorities it advertises when requesting a client certificate.`,
	Args:  cobra.ExactArgs(1),
	Example: `  peervet issuers mtls.example.com
  peervet issuers -j mtls.example.com:8443`,
	RunE: runIssuers,
}

func init() {
	issuersCmd.Flags().BoolVarP(&issuersJSON, "json", "j", false, "Output in JSON format")
	issuersCmd.Flags().DurationVar(&issuersTimeout, "timeout", 10*time.Second, "Connection timeout")
}

func runIssuers(cmd *cobra.Command, args []string) error {
	endpoint := args[0]

	peer, err := fetcher.Fetch(endpoint, issuersTimeout)
	if err != nil {
		return err
	}

	names := session.AcceptableIssuers(peer.Session, slog.Default())
	if len(names) == 0 {
		// The endpoint did not request a client certificate, or advertised
		// no CAs. Not an error.
		return nil
	}

	list := &output.IssuerList{Endpoint: endpoint, Names: names}
	format := output.FormatText
	if issuersJSON {
		format = output.FormatJSON
	}
	result, err := output.FormatOutput(list, format)
	if err != nil {
		return err
	}
	fmt.Println(result)

	return nil
}
