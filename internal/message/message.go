// Package message defines the captured message model and the decoding logic
// applied once a DATA block completes.
package message

// Message is one captured SMTP submission: the envelope from the dialogue,
// the raw text exactly as received, and the decoded view of it.
type Message struct {
	Sender    string
	Recipient string

	// Raw is the DATA payload with lines joined by CRLF, including a
	// trailing CRLF after the last line. It is what gets persisted.
	Raw string

	Parsed Parsed
}

// Parsed is the decoded view of a raw message, immutable after Decode.
type Parsed struct {
	Subject          string
	ContentType      string
	IsHTML           bool
	TransferEncoding string
	MIMEVersion      string

	// DecodedContent is the body after undoing the declared transfer
	// encoding. It is always set: empty for an empty body, or a
	// diagnostic placeholder when decoding fails.
	DecodedContent string
}
