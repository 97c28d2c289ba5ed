package intel

// MaxKeywords caps the suspicious-keyword set on a record.
const MaxKeywords = 10

// Record holds the structured intelligence pulled out of conversation text.
// Every set is deduplicated and keeps first-seen order.
type Record struct {
	UPIIDs       []string `json:"upiIds"`
	PhoneNumbers []string `json:"phoneNumbers"`
	URLs         []string `json:"urls"`
	BankAccounts []string `json:"bankAccounts"`
	Keywords     []string `json:"suspiciousKeywords"`

	// Emails is a metadata bucket: local@domain strings whose handle is not a
	// known payment provider. Never overlaps UPIIDs.
	Emails []string `json:"emailAddresses"`
}

// Merge folds other into r, preserving r's insertion order and dedup rules.
func (r *Record) Merge(other Record) {
	r.UPIIDs = appendUnique(r.UPIIDs, other.UPIIDs, -1)
	r.PhoneNumbers = appendUnique(r.PhoneNumbers, other.PhoneNumbers, -1)
	r.URLs = appendUnique(r.URLs, other.URLs, -1)
	r.BankAccounts = appendUnique(r.BankAccounts, other.BankAccounts, -1)
	r.Keywords = appendUnique(r.Keywords, other.Keywords, MaxKeywords)
	r.Emails = appendUnique(r.Emails, other.Emails, -1)
}

// Count returns the number of actionable intelligence items (keyword and
// email metadata excluded).
func (r Record) Count() int {
	return len(r.UPIIDs) + len(r.PhoneNumbers) + len(r.URLs) + len(r.BankAccounts)
}

// Clone returns a deep copy so a snapshot cannot alias live session state.
func (r Record) Clone() Record {
	return Record{
		UPIIDs:       append([]string(nil), r.UPIIDs...),
		PhoneNumbers: append([]string(nil), r.PhoneNumbers...),
		URLs:         append([]string(nil), r.URLs...),
		BankAccounts: append([]string(nil), r.BankAccounts...),
		Keywords:     append([]string(nil), r.Keywords...),
		Emails:       append([]string(nil), r.Emails...),
	}
}

// appendUnique appends items from src not already in dst, in src order.
// A non-negative limit caps the total length of the result.
func appendUnique(dst, src []string, limit int) []string {
	for _, s := range src {
		if limit >= 0 && len(dst) >= limit {
			break
		}
		if !contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
