// Package reply turns accumulated session state into the next engagement
// line. Selection is deterministic: templates rotate on the message count,
// so behavior is reproducible under test while still reading as varied.
//
// Hard contract: produced text never names a scam category, never contains
// the word "scam" and never includes a confidence value. Detection stays
// internal.
package reply

import (
	"regexp"

	"github.com/lurelabs/lure/internal/detect"
)

// Stage buckets the conversation by how many messages were exchanged.
type Stage string

const (
	StageOpening  Stage = "opening"  // first message
	StageCurious  Stage = "curious"  // messages 2-3
	StageEngaged  Stage = "engaged"  // messages 4-8
	StageProbing  Stage = "probing"  // messages 9-15
	StageStalling Stage = "stalling" // 16 and beyond
	StageGoodbye  Stage = "goodbye"  // terminating turn
)

var openingReplies = []string{
	"Hello! Thanks for reaching out. What is this about?",
	"Hi there! I got your message. Can you tell me more?",
	"Hey! I'm interested. Please explain more.",
	"Hello! This sounds interesting. What do I need to do?",
	"Arre, thoda samajh nahi aa raha. Batao zara.",
}

var curiousReplies = []string{
	"That sounds interesting. Can you provide more details?",
	"I'm not sure I understand. Can you explain further?",
	"This is new to me. How does it work exactly?",
	"Could you tell me more about this?",
	"Thoda clearly samjhaoge kya?",
}

var paymentReplies = []string{
	"What payment method do you accept?",
	"How much do I need to pay?",
	"Can you send me your payment details?",
	"Is there a processing fee involved?",
	"UPI ya bank details share karoge?",
}

var prizeReplies = []string{
	"Really? That's amazing! How do I claim it?",
	"What did I win? What do I need to do?",
	"This is exciting! Where do I collect it?",
	"I didn't enter any contest. Are you sure it's me?",
}

var jobReplies = []string{
	"This job sounds perfect! What are the details?",
	"I'm looking for work. What's the salary?",
	"Is this full-time or part-time? What are the requirements?",
	"When can I start? Do I need to pay anything upfront?",
}

var engagementReplies = []string{
	"Okay, I'm ready. What should I do next?",
	"I understand. Please guide me through the process.",
	"I'm interested in proceeding. What's the next step?",
	"Sounds good. How do we move forward?",
}

var stallingReplies = []string{
	"Let me check my account and get back to you.",
	"I need to discuss this with my family first.",
	"Can you give me some time to think about it?",
	"I'm at work right now. Can we continue this later?",
}

var lateReplies = []string{
	"I think I need more time to consider this.",
	"Let me verify this information first.",
	"I'll get back to you after checking.",
	"This is taking longer than I expected. Can we pause?",
}

var goodbyeReplies = []string{
	"Accha, main thoda check karke batata hoon.",
	"Let me think about it and get back to you.",
	"Abhi thoda busy hoon, baad mein baat karte hain.",
}

var deflectReplies = []string{
	"Arre, aise kyun pooch rahe ho?",
	"Main samjha nahi, kya matlab?",
	"Aap kaam ki baat batao na.",
	"Mujhe thoda odd lag raha hai ye question.",
}

// suspicionPatterns are probes trying to out the counterpart as automated.
// Matching messages get a deflection instead of the stage reply.
var suspicionPatterns = compileAll(
	`are you a bot`,
	`are you an ai`,
	`are you human`,
	`ignore previous`,
	`system prompt`,
	`developer message`,
	`what model`,
	`chatgpt`,
	`openai`,
	`gemini`,
	`\bllm\b`,
	`honeypot`,
	`jailbreak`,
)

func compileAll(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		res = append(res, regexp.MustCompile(`(?i)`+e))
	}
	return res
}

// IsSuspicious reports whether the message probes for automation.
func IsSuspicious(text string) bool {
	for _, re := range suspicionPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// StageFor maps the inbound message count to a conversation stage.
func StageFor(messageCount int) Stage {
	switch {
	case messageCount <= 1:
		return StageOpening
	case messageCount <= 3:
		return StageCurious
	case messageCount <= 8:
		return StageEngaged
	case messageCount <= 15:
		return StageProbing
	default:
		return StageStalling
	}
}

// Select picks the next reply from the accumulated conversation state:
// the inbound text (for the persona guard), the matched categories so far
// and the message count. Rotation index is messageCount modulo pool size.
func Select(text string, intents []detect.Intent, messageCount int) string {
	if IsSuspicious(text) {
		return pick(deflectReplies, messageCount)
	}

	switch StageFor(messageCount) {
	case StageOpening:
		return pick(openingReplies, messageCount)

	case StageCurious:
		switch {
		case hasIntent(intents, detect.IntentFakePrize):
			return pick(prizeReplies, messageCount)
		case hasIntent(intents, detect.IntentJobScam):
			return pick(jobReplies, messageCount)
		default:
			return pick(curiousReplies, messageCount)
		}

	case StageEngaged:
		if hasAny(intents, detect.IntentFinancialFraud, detect.IntentUPIScam, detect.IntentFakePrize) {
			return pick(paymentReplies, messageCount)
		}
		return pick(engagementReplies, messageCount)

	case StageProbing:
		if messageCount%2 == 0 {
			return pick(stallingReplies, messageCount)
		}
		return pick(paymentReplies, messageCount)

	default:
		return pick(lateReplies, messageCount)
	}
}

// Goodbye is the terminating line.
func Goodbye(messageCount int) string {
	return pick(goodbyeReplies, messageCount)
}

func pick(pool []string, n int) string {
	if n < 0 {
		n = -n
	}
	return pool[n%len(pool)]
}

func hasIntent(intents []detect.Intent, want detect.Intent) bool {
	for _, in := range intents {
		if in == want {
			return true
		}
	}
	return false
}

func hasAny(intents []detect.Intent, wants ...detect.Intent) bool {
	for _, w := range wants {
		if hasIntent(intents, w) {
			return true
		}
	}
	return false
}
