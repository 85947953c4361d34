package core

import (
	"golang.org/x/text/cases"
)

// folder performs Unicode case folding. Folding (rather than a plain
// lower-casing) keeps matching stable for the odd non-ASCII subject line.
var folder = cases.Fold()

// Normalize derives the case-folded matching view of an email.
// Normalization is case folding only: no HTML stripping, no stemming,
// no whitespace collapsing. A nil email yields the zero value.
func Normalize(email *Email) NormalizedEmail {
	if email == nil {
		return NormalizedEmail{}
	}

	subject := folder.String(email.Subject)
	body := folder.String(email.Body)

	return NormalizedEmail{
		Subject:  subject,
		Body:     body,
		From:     folder.String(email.From),
		Combined: subject + " " + body,
	}
}
