// Package notify renders findings as chat messages and delivers them to a
// webhook.
package notify

import (
	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
)

// Attachment colors.
const (
	ColorError    = "#FF0000"
	ColorWarn     = "#FFA500"
	ColorInternal = "#8963B9"
)

const (
	internalErrorTitle = "Ooopsy oopsy!"
	footer             = "sslcheck"
)

// Message is one outbound alert. The shape follows Slack's legacy
// attachments payload; other formats are derived from it on send.
type Message struct {
	Attachments []Attachment `json:"attachments"`
}

// Attachment is a single colored block of a Message.
type Attachment struct {
	Color  string `json:"color"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Footer string `json:"footer,omitempty"`
}

// Format maps one finding to one message.
func Format(f finding.Finding) Message {
	if f.IsGeneric() {
		return internalMessage(f.Detail(), footer+" | "+f.URL())
	}

	color := ColorError
	if f.Severity() == finding.SeverityWarn {
		color = ColorWarn
	}

	return Message{Attachments: []Attachment{{
		Color:  color,
		Title:  Title(f) + ": " + f.URL(),
		Text:   f.Detail(),
		Footer: footer,
	}}}
}

// FormatInternalError renders an error caught outside the per-host findings.
func FormatInternalError(err error) Message {
	text := "unknown error"
	if err != nil {
		text = err.Error()
	}
	return internalMessage(text, footer)
}

func internalMessage(text, foot string) Message {
	return Message{Attachments: []Attachment{{
		Color:  ColorInternal,
		Title:  internalErrorTitle,
		Text:   "Check logs! Failed with error: " + text,
		Footer: foot,
	}}}
}

// Title returns the category-specific headline for a finding.
func Title(f finding.Finding) string {
	switch f.Category() {
	case finding.CategoryUnreachable:
		switch f.Failure() {
		case finding.FailureDNS:
			return "DNS resolution failed"
		case finding.FailureConnect:
			return "Connection failed"
		case finding.FailureTLS:
			return "TLS handshake failed"
		case finding.FailureHTTPStatus:
			return "Health check failed"
		default:
			return "Host unreachable"
		}
	case finding.CategoryNotYetValid:
		return "Certificate not yet valid"
	case finding.CategoryExpiringSoon:
		if f.Severity() == finding.SeverityError {
			return "Certificate expired"
		}
		return "Certificate expiring soon"
	case finding.CategorySubjectMismatch:
		return "Certificate subject mismatch"
	case finding.CategoryChainOrderInvalid:
		return "Certificate chain order invalid"
	case finding.CategoryScanCommandFailed:
		return "Scan command failed"
	default:
		return internalErrorTitle
	}
}
