package session

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/binary"
	"log/slog"
)

// issuerLengthPrefixSize is the length prefix preceding each issuer record
// in the packed buffer (big-endian uint16, as on the TLS wire).
const issuerLengthPrefixSize = 2

// AcceptableIssuers returns the distinguished names of the certificate
// issuers the peer advertised as acceptable, in advertised order. It never
// fails: any inability to query the session yields an empty result, which
// callers treat as "any certificate is acceptable".
//
// A record with a zero declared length is a data-integrity anomaly: it is
// logged once, its slot is kept as an empty name, and processing continues
// with the remaining records. A declared length running past the end of the
// buffer is likewise logged and ends processing, since the record boundary
// is lost. The underlying buffer is released once, after all records have
// been walked.
func AcceptableIssuers(sess Session, log *slog.Logger) []string {
	if log == nil {
		log = slog.Default()
	}
	if sess == nil {
		return nil
	}

	buf, release, err := sess.IssuerList()
	if err != nil {
		log.Debug("issuer list unavailable", "error", err)
		return nil
	}
	if release != nil {
		defer release()
	}

	var names []string
	offset := 0
	for offset < len(buf) {
		if offset+issuerLengthPrefixSize > len(buf) {
			log.Warn("issuer list truncated inside length prefix", "offset", offset)
			break
		}
		declared := int(binary.BigEndian.Uint16(buf[offset : offset+issuerLengthPrefixSize]))
		offset += issuerLengthPrefixSize

		// Never trust a declared length without checking it is positive and
		// fits in the remaining buffer.
		if declared == 0 {
			log.Warn("issuer entry with non-positive length", "index", len(names))
			names = append(names, "")
			continue
		}
		if offset+declared > len(buf) {
			log.Warn("issuer entry length exceeds buffer",
				"index", len(names), "declared", declared, "remaining", len(buf)-offset)
			break
		}

		names = append(names, decodeIssuerName(buf[offset:offset+declared], len(names), log))
		offset += declared
	}

	return names
}

// decodeIssuerName decodes a DER distinguished name into its RFC 2253 string
// form. Undecodable names are logged and reported as empty, best effort.
func decodeIssuerName(der []byte, index int, log *slog.Logger) string {
	var rdn pkix.RDNSequence
	if _, err := asn1.Unmarshal(der, &rdn); err != nil {
		log.Warn("undecodable issuer name", "index", index, "error", err)
		return ""
	}

	var name pkix.Name
	name.FillFromRDNSequence(&rdn)
	return name.String()
}
