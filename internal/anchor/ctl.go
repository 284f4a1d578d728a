package anchor

import (
	"bytes"
	"encoding/asn1"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/go-cabfile/cabfile"
	"go.mozilla.org/pkcs7"
)

// Microsoft CTL OIDs
var (
	// oidSHA256Fingerprint is the OID for SHA-256 certificate fingerprint attribute.
	oidSHA256Fingerprint = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 10, 11, 98}

	// oidNotBeforeFiletime is the OID for NotBefore constraint (certs issued after this date not trusted).
	oidNotBeforeFiletime = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 10, 11, 126}

	// oidDisallowedFiletime is the OID for Disallowed constraint (CA completely distrusted after this date).
	oidDisallowedFiletime = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 10, 11, 104}
)

// ctlAttribute represents an attribute in a CTL entry.
type ctlAttribute struct {
	Type   asn1.ObjectIdentifier
	Values asn1.RawValue
}

// ctlEntry represents a trusted subject entry in the CTL.
type ctlEntry struct {
	SubjectIdentifier []byte         // SHA-1 hash of the certificate
	Attributes        []ctlAttribute `asn1:"set"`
}

// filetimeEpochOffset is the number of seconds between Windows FILETIME epoch (1601-01-01)
// and Unix epoch (1970-01-01).
const filetimeEpochOffset = 11644473600

// parseFiletime converts a Windows FILETIME (64-bit little-endian, 100-nanosecond intervals
// since 1601-01-01 UTC) to a Go time.Time.
func parseFiletime(data []byte) (time.Time, error) {
	if len(data) != 8 {
		return time.Time{}, fmt.Errorf("FILETIME must be 8 bytes, got %d", len(data))
	}

	// FILETIME is little-endian 64-bit value
	ft := binary.LittleEndian.Uint64(data)
	if ft == 0 {
		return time.Time{}, fmt.Errorf("zero FILETIME")
	}

	// Convert 100-nanosecond intervals to seconds and nanoseconds
	seconds := int64(ft/10000000) - filetimeEpochOffset
	nanoseconds := int64((ft % 10000000) * 100)

	return time.Unix(seconds, nanoseconds).UTC(), nil
}

// LoadCTL reads a Microsoft Certificate Trust List and returns the distrust
// constraints it records per anchor fingerprint. The reader may supply either
// a raw .stl file or an authroot .cab archive containing one.
func LoadCTL(r io.Reader, log *slog.Logger) (DistrustSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read CTL: %w", err)
	}

	stl := data
	if isCAB(data) {
		stl, err = extractSTLFromCAB(data)
		if err != nil {
			return nil, err
		}
	}

	return parseCTL(stl, log)
}

// cabMagic is the MSCF signature at the start of every cabinet file.
var cabMagic = []byte{'M', 'S', 'C', 'F'}

func isCAB(data []byte) bool {
	return bytes.HasPrefix(data, cabMagic)
}

// extractSTLFromCAB extracts the .stl file from a Microsoft CAB archive.
func extractSTLFromCAB(data []byte) ([]byte, error) {
	reader := bytes.NewReader(data)
	cab, err := cabfile.New(reader)
	if err != nil {
		return nil, fmt.Errorf("open cab: %w", err)
	}

	// Find the .stl file in the cabinet
	for _, name := range cab.FileList() {
		if strings.HasSuffix(strings.ToLower(name), ".stl") {
			content, err := cab.Content(name)
			if err != nil {
				return nil, fmt.Errorf("open %s in cab: %w", name, err)
			}

			stlData, err := io.ReadAll(content)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			return stlData, nil
		}
	}

	return nil, fmt.Errorf("no .stl file found in cabinet")
}

// parseCTL parses a Microsoft Certificate Trust List from STL data.
// The STL file is PKCS7 SignedData containing the CTL ASN.1 structure.
func parseCTL(stlData []byte, log *slog.Logger) (DistrustSet, error) {
	if log == nil {
		log = slog.Default()
	}

	// Parse PKCS7 SignedData envelope
	p7, err := pkcs7.Parse(stlData)
	if err != nil {
		return nil, fmt.Errorf("parse pkcs7: %w", err)
	}

	// The CTL content is an implicit SEQUENCE - elements are directly in the
	// content without an outer SEQUENCE wrapper, so the leading fields are
	// skipped one at a time.
	// Structure: SubjectUsage, SequenceNumber, ThisUpdate, SubjectAlgorithm, TrustedSubjects, [Extensions]
	content := p7.Content
	for _, field := range []string{"subject usage", "sequence number", "this update", "subject algorithm"} {
		var skipped asn1.RawValue
		content, err = asn1.Unmarshal(content, &skipped)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", field, err)
		}
	}

	// Parse: TrustedSubjects (SEQUENCE OF TrustedSubject)
	var trustedSubjectsRaw asn1.RawValue
	_, err = asn1.Unmarshal(content, &trustedSubjectsRaw)
	if err != nil {
		return nil, fmt.Errorf("parse trusted subjects: %w", err)
	}

	entries, err := parseTrustedSubjects(trustedSubjectsRaw.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse trusted subject entries: %w", err)
	}

	set := make(DistrustSet)
	for _, entry := range entries {
		fp, d, err := extractDistrust(entry.Attributes, log)
		if err != nil {
			// Some entries carry no SHA-256 attribute; skip them.
			log.Warn("skipping CTL entry", "error", err)
			continue
		}
		if !d.IsEmpty() {
			set[fp] = d
		}
	}

	return set, nil
}

// parseTrustedSubjects parses the SEQUENCE OF TrustedSubject entries.
func parseTrustedSubjects(data []byte) ([]ctlEntry, error) {
	var entries []ctlEntry

	for len(data) > 0 {
		var entry ctlEntry
		rest, err := asn1.Unmarshal(data, &entry)
		if err != nil {
			return nil, fmt.Errorf("unmarshal entry: %w", err)
		}
		entries = append(entries, entry)
		data = rest
	}

	return entries, nil
}

// extractDistrust extracts the fingerprint and distrust constraints from CTL
// entry attributes. The fingerprint is resolved first so later warnings can
// name the certificate they refer to.
func extractDistrust(attrs []ctlAttribute, log *slog.Logger) (Fingerprint, Distrust, error) {
	var fp Fingerprint

	for _, attr := range attrs {
		if attr.Type.Equal(oidSHA256Fingerprint) {
			var fpBytes []byte
			if _, err := asn1.Unmarshal(attr.Values.Bytes, &fpBytes); err != nil {
				return Fingerprint{}, Distrust{}, fmt.Errorf("unmarshal fingerprint bytes: %w", err)
			}
			if len(fpBytes) != len(fp) {
				return Fingerprint{}, Distrust{}, fmt.Errorf("fingerprint is %d bytes, want %d", len(fpBytes), len(fp))
			}
			fp = FingerprintFromBytes(fpBytes)
			break
		}
	}

	if fp.IsZero() {
		return Fingerprint{}, Distrust{}, fmt.Errorf("no SHA-256 fingerprint found")
	}

	var d Distrust
	fpPrefix := fp.Truncate(4)
	for _, attr := range attrs {
		switch {
		case attr.Type.Equal(oidNotBeforeFiletime):
			if t, ok := filetimeAttr(attr, fpPrefix, "NotBeforeFiletime", log); ok {
				d.NotBeforeMax = &t
			}

		case attr.Type.Equal(oidDisallowedFiletime):
			if t, ok := filetimeAttr(attr, fpPrefix, "DisallowedFiletime", log); ok {
				d.DistrustDate = &t
			}
		}
	}

	return fp, d, nil
}

// filetimeAttr decodes a FILETIME-valued CTL attribute, warning and skipping
// on malformed values.
func filetimeAttr(attr ctlAttribute, fpPrefix, name string, log *slog.Logger) (time.Time, bool) {
	var ftBytes []byte
	if _, err := asn1.Unmarshal(attr.Values.Bytes, &ftBytes); err != nil {
		log.Warn("unmarshal CTL attribute", "cert", fpPrefix, "attr", name, "error", err)
		return time.Time{}, false
	}
	t, err := parseFiletime(ftBytes)
	if err != nil {
		log.Warn("parse CTL attribute", "cert", fpPrefix, "attr", name, "error", err)
		return time.Time{}, false
	}
	return t, true
}
