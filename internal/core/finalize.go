package core

import "strings"

const signatureSeparator = "\n\n"

// Finalize appends signature to draft after a blank line. A draft that
// already ends with the exact signature has that occurrence and its
// separator removed first, so finalizing the output again is a no-op.
// A blank signature returns draft unchanged.
func Finalize(draft, signature string) string {
	if strings.TrimSpace(signature) == "" {
		return draft
	}

	body := draft
	if strings.HasSuffix(body, signature) {
		body = strings.TrimSuffix(body, signature)
		if strings.HasSuffix(body, signatureSeparator) {
			body = strings.TrimSuffix(body, signatureSeparator)
		} else {
			body = strings.TrimSuffix(body, "\n")
		}
	}

	return body + signatureSeparator + signature
}
