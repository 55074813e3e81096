package message

import (
	"regexp"
	"strings"
)

// charsetPattern extracts the token following "charset=" up to the next
// semicolon or whitespace.
var charsetPattern = regexp.MustCompile(`(?i)charset=([^;\s]+)`)

// FormatLabel derives a short human-readable description of the message
// format, e.g. "HTML | Base64 Encoded | MIME 1.0 | Charset: utf-8".
// Parts are joined with " | " in a fixed order: content kind, encoding
// note, MIME version, charset.
func (p Parsed) FormatLabel() string {
	parts := []string{p.contentKind()}

	if note := encodingNote(p.TransferEncoding); note != "" {
		parts = append(parts, note)
	}
	if p.MIMEVersion != "" {
		parts = append(parts, "MIME "+p.MIMEVersion)
	}
	if cs := charsetPattern.FindStringSubmatch(p.ContentType); cs != nil {
		parts = append(parts, "Charset: "+cs[1])
	}

	return strings.Join(parts, " | ")
}

func (p Parsed) contentKind() string {
	switch {
	case p.IsHTML:
		return "HTML"
	case strings.Contains(strings.ToLower(p.ContentType), "text/plain"):
		return "Plain Text"
	case p.ContentType != "":
		kind, _, _ := strings.Cut(p.ContentType, ";")
		return strings.TrimSpace(kind)
	default:
		return "Plain Text"
	}
}

// encodingNote describes the transfer encoding. 7bit and 8bit are the
// identity encodings and contribute nothing.
func encodingNote(encoding string) string {
	if encoding == "" {
		return ""
	}
	switch strings.ToLower(encoding) {
	case "base64":
		return "Base64 Encoded"
	case "quoted-printable":
		return "Quoted-Printable"
	case "7bit", "8bit":
		return ""
	default:
		return encoding + " Encoded"
	}
}
