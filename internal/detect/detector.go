package detect

import (
	"math"
	"regexp"
)

// Intent is one label from the fixed scam-category vocabulary.
type Intent string

const (
	IntentFinancialFraud Intent = "financial_fraud"
	IntentPhishing       Intent = "phishing"
	IntentUPIScam        Intent = "upi_scam"
	IntentFakePrize      Intent = "fake_prize"
	IntentJobScam        Intent = "job_scam"
	IntentRomanceScam    Intent = "romance_scam"
	IntentTechSupport    Intent = "tech_support"
)

// category pairs an intent label with its ordered indicator patterns.
// The library is plain data: compiled once at init, read-only afterwards.
type category struct {
	intent   Intent
	patterns []*regexp.Regexp
}

var categories = []category{
	{IntentFinancialFraud, compileAll(
		`\b(urgent|immediate|act now|limited time)\b`,
		`\b(bank account|account number|credit card|debit card)\b`,
		`\b(verify|confirm|update).*\b(account|details|information)\b`,
		`\b(suspended|blocked|locked).*\b(account|card)\b`,
	)},
	{IntentPhishing, compileAll(
		`\b(click|visit|go to).*\b(link|url|website)\b`,
		`\b(reset|recover|verify).*\b(password|credentials)\b`,
		`\b(secure|verify|confirm).*\b(identity|account)\b`,
		`\b(unusual activity|suspicious login)\b`,
	)},
	{IntentUPIScam, compileAll(
		`\b(upi|paytm|phonepe|google pay|gpay)\b`,
		`\b(send|transfer|payment).*(₹|\brs\b|\brupees\b)`,
		`\b(refund|cashback|reward)\b`,
		`\b[a-zA-Z0-9._-]+@[a-zA-Z]+\b`,
	)},
	{IntentFakePrize, compileAll(
		`\b(won|winner|congratulations|prize|lottery)\b`,
		`\b(claim|collect).*\b(prize|reward|gift)\b`,
		`\b(lucky|selected|chosen)\b`,
		`\b(free|complimentary).*\b(gift|voucher|coupon)\b`,
	)},
	{IntentJobScam, compileAll(
		`\b(job offer|employment|work from home|part time)\b`,
		`\b(earn|make).*(₹|\brs\b|\brupees\b|\bmoney\b)`,
		`\b(registration fee|training fee|security deposit)\b`,
		`\b(high income|guaranteed income)\b`,
	)},
	{IntentRomanceScam, compileAll(
		`\b(love|romantic|relationship|dating)\b`,
		`\b(lonely|single|looking for)\b`,
		`\b(money|financial|help|emergency)\b`,
		`\b(meet|video call).*\b(fee|payment)\b`,
	)},
	{IntentTechSupport, compileAll(
		`\b(technical support|tech support|customer support)\b`,
		`\b(virus|malware|security threat)\b`,
		`\b(computer|laptop|device).*\b(infected|compromised)\b`,
		`\b(microsoft|apple|google).*\b(support|team)\b`,
	)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		res = append(res, regexp.MustCompile(`(?i)`+e))
	}
	return res
}

// Result is the outcome of classifying a single message. A message may match
// zero, one, or several categories at once.
type Result struct {
	Intents    []Intent
	Confidence float64
}

// Scam reports whether any category matched.
func (r Result) Scam() bool { return len(r.Intents) > 0 }

// Classify scores a message against every scam category. A category matches
// when at least one of its patterns matches. Confidence is the mean fraction
// of patterns matched across matched categories, boosted when more than one
// category matched, clipped to [0,1]. No matches means empty intents and
// confidence 0. Deterministic and history-free.
func Classify(text string) Result {
	var intents []Intent
	var scoreSum float64

	for _, c := range categories {
		matched := 0
		for _, re := range c.patterns {
			if re.MatchString(text) {
				matched++
			}
		}
		if matched > 0 {
			intents = append(intents, c.intent)
			scoreSum += float64(matched) / float64(len(c.patterns))
		}
	}

	if len(intents) == 0 {
		return Result{}
	}

	confidence := scoreSum / float64(len(intents))
	if len(intents) > 1 {
		confidence = math.Min(confidence*1.2, 1.0)
	}

	return Result{Intents: intents, Confidence: confidence}
}

// Intents returns the full category vocabulary in declaration order.
func Intents() []Intent {
	out := make([]Intent, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.intent)
	}
	return out
}
