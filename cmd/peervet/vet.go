package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivoronin/peervet/internal/anchor"
	"github.com/ivoronin/peervet/internal/chain"
	"github.com/ivoronin/peervet/internal/fetcher"
	"github.com/ivoronin/peervet/internal/filter"
	"github.com/ivoronin/peervet/internal/output"
	"github.com/ivoronin/peervet/internal/session"
	"github.com/ivoronin/peervet/internal/trust"
)

var (
	vetJSON     bool
	vetFilter   string
	vetTimeout  time.Duration
	vetAnchors  string
	vetCTL      string
	vetDistrust []string
)

var vetCmd = &cobra.Command{
	Use:   "vet <endpoint>",
	Short: "Evaluate certificate trust for an endpoint",
	Long:  `Connect to endpoint over TLS and evaluate trust in the peer certificate.`,
	Args:  cobra.ExactArgs(1),
	Example: `  peervet vet example.com
  peervet vet -j example.com
  peervet vet -f 'tls>=1.2,name=example.com' example.com:8443`,
	RunE: runVet,
}

func init() {
	vetCmd.Flags().BoolVarP(&vetJSON, "json", "j", false, "Output in JSON format")
	vetCmd.Flags().StringVarP(&vetFilter, "filter", "f", "", "Constraint expression (e.g., tls>=1.2,name=example.com)")
	vetCmd.Flags().DurationVar(&vetTimeout, "timeout", 10*time.Second, "Connection timeout")
	vetCmd.Flags().StringVar(&vetAnchors, "anchors", "", "Trust anchor bundle (PEM, DER or PKCS#7); defaults to the system roots")
	vetCmd.Flags().StringVar(&vetCTL, "ctl", "", "Microsoft certificate trust list (.cab or .stl) with distrust dates")
	vetCmd.Flags().StringArrayVar(&vetDistrust, "distrust", nil, "SHA-256 fingerprint of an anchor to distrust (repeatable)")
}

func runVet(cmd *cobra.Command, args []string) error {
	endpoint := args[0]

	// Parse constraints
	var f *filter.Filter
	if vetFilter != "" {
		var err error
		f, err = filter.Parse(vetFilter)
		if err != nil {
			return fmt.Errorf("invalid constraints: %w", err)
		}
	}

	// Establish session
	peer, err := fetcher.Fetch(endpoint, vetTimeout)
	if err != nil {
		return err
	}

	builder, err := buildEngine(peer)
	if err != nil {
		return err
	}

	host, checkName := f.Host(peer.Host)
	role := trust.RoleClient
	if f.Role() == "server" {
		role = trust.RoleServer
	}

	v := &trust.Validator{Engine: builder}
	terrs, err := v.ValidateRemote(peer.Session, checkName, role, host)
	if err != nil {
		return err
	}

	leaf, _, err := session.RemoteCertificate(peer.Session, false)
	if err != nil {
		return err
	}

	checks := buildChecks(f, peer.Protocol, host, checkName, terrs)

	allPassed := true
	for _, c := range checks {
		if !c.Passed {
			allPassed = false
			break
		}
	}

	report := &output.VetReport{
		Endpoint:    endpoint,
		Timestamp:   time.Now(),
		ToolVersion: Version,
		Protocol:    peer.Protocol,
		Leaf:        leaf,
		Trust:       terrs,
		Checks:      checks,
		AllPassed:   allPassed,
	}

	format := output.FormatText
	if vetJSON {
		format = output.FormatJSON
	}
	result, err := output.FormatOutput(&output.VetOutput{Report: report}, format)
	if err != nil {
		return err
	}

	fmt.Println(result)

	if !allPassed {
		os.Exit(ExitTrustFail)
	}
	return nil
}

// buildEngine assembles the chain builder from the session's certificate
// collection and the configured anchors and distrust list.
func buildEngine(peer *fetcher.Peer) (*chain.PoolBuilder, error) {
	builder := &chain.PoolBuilder{}

	_, collection, err := session.RemoteCertificate(peer.Session, true)
	if err != nil {
		return nil, err
	}
	if len(collection) > 1 {
		builder.Intermediates = collection[1:]
	}

	if vetAnchors != "" {
		anchors, err := anchor.LoadBundle(vetAnchors)
		if err != nil {
			return nil, fmt.Errorf("loading anchors: %w", err)
		}
		builder.Roots = anchor.Pool(anchors)
	}

	if vetCTL != "" {
		f, err := os.Open(vetCTL)
		if err != nil {
			return nil, fmt.Errorf("loading CTL: %w", err)
		}
		defer func() { _ = f.Close() }()

		distrust, err := anchor.LoadCTL(f, slog.Default())
		if err != nil {
			return nil, fmt.Errorf("loading CTL: %w", err)
		}
		builder.Distrust = distrust
	}

	distrust, err := distrustAnchors(builder.Distrust, vetDistrust)
	if err != nil {
		return nil, err
	}
	builder.Distrust = distrust

	return builder, nil
}

// distrustEpoch marks a flag-supplied anchor as distrusted from the start of
// time, so any chain it anchors is rejected.
var distrustEpoch = time.Unix(0, 0).UTC()

// distrustAnchors overlays flag-supplied anchor fingerprints onto the
// distrust set, alongside any entries loaded from a CTL.
func distrustAnchors(set anchor.DistrustSet, prints []string) (anchor.DistrustSet, error) {
	if len(prints) == 0 {
		return set, nil
	}
	if set == nil {
		set = make(anchor.DistrustSet)
	}

	for _, p := range prints {
		fp, err := anchor.ParseFingerprint(p)
		if err != nil {
			return nil, fmt.Errorf("invalid distrust fingerprint %q: %w", p, err)
		}
		d := set[fp]
		d.DistrustDate = &distrustEpoch
		set[fp] = d
	}
	return set, nil
}

// buildChecks derives the per-check outcomes from the constraints and the
// accumulated trust errors.
func buildChecks(f *filter.Filter, proto, host string, checkName bool, terrs trust.TrustErrors) []output.Check {
	checks := []output.Check{
		{
			Name:   "protocol",
			Passed: f.ProtoAllowed(proto),
			Detail: proto,
		},
		{
			Name:   "certificate",
			Passed: !terrs.Has(trust.NotAvailable),
		},
		{
			Name:   "chain",
			Passed: !terrs.Has(trust.ChainErrors) && !terrs.Has(trust.NotAvailable),
		},
	}

	name := output.Check{Name: "name", Passed: true, Detail: "skipped"}
	if checkName {
		name.Passed = !terrs.Has(trust.NameMismatch) && !terrs.Has(trust.NotAvailable)
		name.Detail = host
	}
	return append(checks, name)
}
