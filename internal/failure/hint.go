package failure

import "strings"

// signature maps a lower-case fragment of tool output to a diagnosis.
type signature struct {
	fragments []string
	hint      string
}

var knownSignatures = []signature{
	{
		fragments: []string{"pkix", "certificate", "ssl", "tls handshake", "sslhandshakeexception"},
		hint:      "TLS/certificate error: check the system clock and any proxy or antivirus HTTPS scanning",
	},
	{
		fragments: []string{"unknownhostexception", "no such host", "name or service not known", "could not resolve"},
		hint:      "DNS lookup failed: check the network connection",
	},
	{
		fragments: []string{"connection refused", "connectexception", "connection reset", "timed out", "sockettimeoutexception", "network is unreachable"},
		hint:      "connection problem: the download server could not be reached, try again later",
	},
	{
		fragments: []string{"unsupportedclassversionerror", "has been compiled by a more recent version"},
		hint:      "the installed Java is too old: install Java 21 or newer",
	},
	{
		fragments: []string{"outofmemoryerror", "could not reserve enough space"},
		hint:      "Java ran out of memory: close other programs and retry",
	},
	{
		fragments: []string{"access is denied", "permission denied", "accessdeniedexception"},
		hint:      "permission denied: the install directory may be read-only or locked by another program",
	},
}

// Diagnose pattern-matches tool output against known failure signatures and
// returns a hint, or an empty string when nothing matches.
func Diagnose(output string) string {
	lower := strings.ToLower(output)
	for _, sig := range knownSignatures {
		for _, f := range sig.fragments {
			if strings.Contains(lower, f) {
				return sig.hint
			}
		}
	}
	return ""
}
