package intel

import (
	"regexp"
	"strings"
)

// Extraction patterns. Read-only after init.
var (
	upiRe   = regexp.MustCompile(`\b[a-zA-Z0-9._-]+@[a-zA-Z]+\b`)
	phoneRe = regexp.MustCompile(`\b(?:\+91|91)?[-.\s]?([6-9]\d{9})\b`)
	urlRe   = regexp.MustCompile(`(?i)https?://(?:www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b[-a-zA-Z0-9()@:%_+.~#?&/=]*`)
	bankRe  = regexp.MustCompile(`(?i)\b(?:account|a/c|ac)(?:\s+no\.?|\s+number)?\s*:?\s*(\d{9,18})\b`)
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// paymentHandles is the allowlist of known payment-provider handles. A
// local@handle string whose handle contains one of these is a payment
// identifier, never an email address.
var paymentHandles = []string{
	"paytm", "oksbi", "ybl", "apl",
	"axl", "ibl", "icici", "okhdfc",
}

// suspiciousVocabulary is scanned verbatim against message text,
// highest-relevance first. Independent of the category patterns.
var suspiciousVocabulary = []string{
	"urgent", "prize", "won", "lottery", "claim", "verify", "account",
	"suspended", "blocked", "bank", "upi", "transfer", "payment",
	"otp", "kyc", "refund", "lucky draw",
}

// Extract scans text for structured intelligence. It is a pure function:
// the same text always yields the same record, and every returned entry is
// literally present in the input (identifiers lower-cased, surroundings
// trimmed).
func Extract(text string) Record {
	var rec Record

	// Payment identifiers first: their spans also veto bank-account matches
	// and keep allowlisted handles out of the email bucket.
	upiSpans := [][]int{}
	for _, span := range upiRe.FindAllStringIndex(text, -1) {
		candidate := text[span[0]:span[1]]
		if !isPaymentID(candidate) {
			continue
		}
		upiSpans = append(upiSpans, span)
		rec.UPIIDs = appendUnique(rec.UPIIDs, []string{strings.ToLower(candidate)}, -1)
	}

	for _, m := range phoneRe.FindAllStringSubmatch(text, -1) {
		rec.PhoneNumbers = appendUnique(rec.PhoneNumbers, []string{m[1]}, -1)
	}

	for _, u := range urlRe.FindAllString(text, -1) {
		rec.URLs = appendUnique(rec.URLs, []string{u}, -1)
	}

	for _, m := range bankRe.FindAllStringSubmatchIndex(text, -1) {
		digits := text[m[2]:m[3]]
		if overlapsAny(m[2], m[3], upiSpans) {
			continue
		}
		rec.BankAccounts = appendUnique(rec.BankAccounts, []string{digits}, -1)
	}

	for _, e := range emailRe.FindAllString(text, -1) {
		if isPaymentID(e) {
			continue
		}
		rec.Emails = appendUnique(rec.Emails, []string{strings.ToLower(e)}, -1)
	}

	lower := strings.ToLower(text)
	for _, term := range suspiciousVocabulary {
		if strings.Contains(lower, term) {
			rec.Keywords = appendUnique(rec.Keywords, []string{term}, MaxKeywords)
		}
	}

	return rec
}

// isPaymentID reports whether a local@handle string belongs to a known
// payment provider.
func isPaymentID(s string) bool {
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return false
	}
	handle := strings.ToLower(s[at+1:])
	for _, h := range paymentHandles {
		if strings.Contains(handle, h) {
			return true
		}
	}
	return false
}

func overlapsAny(start, end int, spans [][]int) bool {
	for _, sp := range spans {
		if start < sp[1] && end > sp[0] {
			return true
		}
	}
	return false
}
