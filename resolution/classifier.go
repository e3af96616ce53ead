package resolution

import "strings"

// Intent is the fixed taxonomy a candidate turn is classified against.
type Intent string

const (
	IntentConfirmation Intent = "confirmation"
	IntentDecline      Intent = "decline"
	IntentCompensation Intent = "compensation_concern"
	IntentPosition     Intent = "position_concern"
	IntentStartDate    Intent = "start_date_concern"
	IntentPersonalInfo Intent = "personal_info_concern"
	IntentUnclear      Intent = "unclear"
)

// Classifier assigns an intent to a candidate utterance. Implementations must
// be pure: same text in, same intent out. The state machine only depends on
// this contract, so the matcher is swappable.
type Classifier interface {
	Classify(text string) Intent
}

// KeywordClassifier matches normalized utterances against fixed keyword and
// phrase lists. Deterministic on purpose: every agent reply in a dispute has
// to be explainable and reproducible for audit, so no model call happens here.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Rule order is fixed. Confirmation and decline are checked before topic
// concerns so "yes the salary is right now" closes the loop instead of
// reopening the compensation thread.
var intentRules = []struct {
	intent  Intent
	phrases []string
	words   []string
}{
	{
		intent:  IntentConfirmation,
		phrases: []string{"that is correct", "thats correct", "looks good", "all good", "i agree", "sounds good", "that works", "no further issue"},
		words:   []string{"yes", "correct", "confirmed", "agreed", "ok", "okay", "resolved"},
	},
	{
		intent:  IntentDecline,
		phrases: []string{"not yet", "still wrong", "i disagree", "let me think", "talk to hr", "come back later"},
		words:   []string{"no", "disagree", "later", "wait"},
	},
	{
		intent:  IntentCompensation,
		phrases: []string{"base pay", "pay rate"},
		words:   []string{"salary", "compensation", "pay", "wage", "bonus", "allowance", "epf", "overtime"},
	},
	{
		intent:  IntentPosition,
		phrases: []string{"job title", "job scope"},
		words:   []string{"title", "position", "role", "designation", "grade"},
	},
	{
		intent:  IntentStartDate,
		phrases: []string{"start date", "starting date", "first day", "joining date", "commencement date"},
		words:   []string{"joining", "commencement"},
	},
	{
		intent:  IntentPersonalInfo,
		phrases: []string{"my name", "ic number", "id number", "passport number", "home address", "phone number", "email address"},
		words:   []string{"spelling", "address", "misspelled", "spelled"},
	},
}

func (c *KeywordClassifier) Classify(text string) Intent {
	normalized := normalizeUtterance(text)
	if normalized == "" {
		return IntentUnclear
	}

	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		tokens[tok] = true
	}

	for _, rule := range intentRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(normalized, phrase) {
				return rule.intent
			}
		}
		for _, word := range rule.words {
			if tokens[word] {
				return rule.intent
			}
		}
	}
	return IntentUnclear
}

// normalizeUtterance lowercases, strips punctuation, and collapses whitespace.
func normalizeUtterance(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastSpace := true
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// replyTemplates maps each intent to the templated agent response sent back
// on that turn.
var replyTemplates = map[Intent]string{
	IntentConfirmation: "Great, glad that is settled. We will update your documents and let the HR team know this dispute is resolved.",
	IntentDecline:      "No problem, take the time you need. Your dispute stays open and an HR colleague can follow up with you directly.",
	IntentCompensation: "Thanks for flagging the compensation details. I have noted the concern against your offer; HR will review the figures and come back to you.",
	IntentPosition:     "Understood, I have recorded your concern about the position and title. HR will re-check the role details on your offer.",
	IntentStartDate:    "Noted on the start date. HR will confirm the intended commencement date and correct the offer if needed.",
	IntentPersonalInfo: "Thanks, I have logged the personal-information correction. HR will verify your details against the records you provided.",
	IntentUnclear:      "I want to make sure I capture this correctly. Could you tell me a bit more about which part of the offer looks wrong?",
}

// ReplyFor returns the templated agent reply for an intent.
func ReplyFor(intent Intent) string {
	if reply, ok := replyTemplates[intent]; ok {
		return reply
	}
	return replyTemplates[IntentUnclear]
}
