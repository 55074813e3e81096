package message

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Decode splits raw message text into headers and body, extracts the known
// header fields, and resolves the declared transfer encoding. It never
// fails: malformed input degrades to a best-effort result with a diagnostic
// embedded in DecodedContent instead of an error.
//
// Only base64 is actually decoded. Quoted-printable and other encodings are
// recorded for labeling but the body is kept as-is.
func Decode(raw string) Parsed {
	var p Parsed
	var isBase64 bool
	var plain strings.Builder
	var b64 strings.Builder

	inHeaders := true
	for _, line := range splitLines(raw) {
		if inHeaders {
			if strings.TrimSpace(line) == "" {
				// First blank line ends the headers and is not
				// part of the body.
				inHeaders = false
				continue
			}
			if v, ok := headerValue(line, "Subject:"); ok {
				p.Subject = v
			} else if v, ok := headerValue(line, "Content-Type:"); ok {
				p.ContentType = v
				p.IsHTML = strings.Contains(strings.ToLower(v), "text/html")
			} else if v, ok := headerValue(line, "Content-Transfer-Encoding:"); ok {
				p.TransferEncoding = v
				isBase64 = strings.EqualFold(v, "base64")
			} else if v, ok := headerValue(line, "MIME-Version:"); ok {
				p.MIMEVersion = v
			}
			// Unrecognized headers are ignored.
			continue
		}

		if isBase64 {
			// base64 payloads may be wrapped at arbitrary widths;
			// strip the per-line whitespace and concatenate.
			b64.WriteString(strings.TrimSpace(line))
		} else {
			plain.WriteString(line)
			plain.WriteByte('\n')
		}
	}

	if isBase64 && b64.Len() > 0 {
		decoded, err := base64.StdEncoding.DecodeString(b64.String())
		switch {
		case err != nil:
			p.DecodedContent = fmt.Sprintf("[Failed to decode base64 content: %v]", err)
		case !utf8.Valid(decoded):
			p.DecodedContent = "[Failed to decode base64 content: decoded bytes are not valid UTF-8]"
		default:
			p.DecodedContent = string(decoded)
		}
		return p
	}

	p.DecodedContent = plain.String()
	return p
}

// splitLines splits on LF, tolerating CRLF and mixed endings. A trailing
// line terminator does not produce a phantom empty line.
func splitLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// headerValue matches a header line against a known prefix, case-insensitively,
// and returns the trimmed remainder.
func headerValue(line, prefix string) (string, bool) {
	if len(line) < len(prefix) || !strings.EqualFold(line[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(prefix):]), true
}
