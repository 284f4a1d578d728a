package main

import (
	"crypto/x509"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivoronin/peervet/internal/anchor"
	"github.com/ivoronin/peervet/internal/fetcher"
	"github.com/ivoronin/peervet/internal/output"
	"github.com/ivoronin/peervet/internal/session"
	"github.com/ivoronin/peervet/internal/store"
)

var (
	identitiesJSON    bool
	identitiesTimeout time.Duration
	identitiesMachine bool
	identitiesWide    bool
)

var identitiesCmd = &cobra.Command{
	Use:   "identities <endpoint>",
	Short: "List personal-store certificates the endpoint would accept",
	Long:  `Connect to endpoint over TLS and list the certificates in the personal store whose issuer matches the endpoint's advertised CA list.`,
	Args:  cobra.ExactArgs(1),
	Example: `  peervet identities mtls.example.com
  peervet identities --machine mtls.example.com`,
	RunE: runIdentities,
}

func init() {
	identitiesCmd.Flags().BoolVarP(&identitiesJSON, "json", "j", false, "Output in JSON format")
	identitiesCmd.Flags().DurationVar(&identitiesTimeout, "timeout", 10*time.Second, "Connection timeout")
	identitiesCmd.Flags().BoolVar(&identitiesMachine, "machine", false, "Use the local machine store instead of the current user store")
	identitiesCmd.Flags().BoolVarP(&identitiesWide, "wide", "w", false, "Display full fingerprints without truncation")
}

func runIdentities(cmd *cobra.Command, args []string) error {
	endpoint := args[0]

	peer, err := fetcher.Fetch(endpoint, identitiesTimeout)
	if err != nil {
		return err
	}
	names := session.AcceptableIssuers(peer.Session, slog.Default())

	loc := store.CurrentUser
	if identitiesMachine {
		loc = store.LocalMachine
	}

	h, err := store.OpenPersonalStore(store.NativeProvider(), loc)
	if err != nil {
		return fmt.Errorf("opening personal store: %w", err)
	}
	defer func() { _ = h.Close() }()

	entries := buildIdentityEntries(h.SelectByIssuer(names))
	if len(entries) == 0 {
		return nil // Empty result is not an error
	}

	list := &output.IdentityList{Entries: entries}
	format := output.FormatText
	if identitiesJSON {
		format = output.FormatJSON
	}
	result, err := output.FormatOutput(list, format)
	if err != nil {
		return err
	}
	fmt.Println(result)

	return nil
}

// buildIdentityEntries converts store certificates to list entries for output.
func buildIdentityEntries(certs []*x509.Certificate) []output.IdentityEntry {
	var entries []output.IdentityEntry

	for _, cert := range certs {
		fp := anchor.FingerprintFromCert(cert)
		displayFP := fp.String()
		if !identitiesJSON && !identitiesWide {
			displayFP = fp.Truncate(4)
		}

		entries = append(entries, output.IdentityEntry{
			Subject:     subjectName(cert),
			Issuer:      cert.Issuer.CommonName,
			Expires:     cert.NotAfter.UTC().Format("2006-01-02"),
			Fingerprint: displayFP,
		})
	}

	return entries
}

// subjectName prefers CommonName, falling back to Organization.
func subjectName(cert *x509.Certificate) string {
	if cert.Subject.CommonName != "" {
		return cert.Subject.CommonName
	}
	if len(cert.Subject.Organization) > 0 {
		return cert.Subject.Organization[0]
	}
	return "-"
}
