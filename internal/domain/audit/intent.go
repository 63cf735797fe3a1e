package audit

import "strings"

// Intent is the coarse search intent behind a query.
type Intent string

// Intents recognized by DetectIntent.
const (
	IntentLookup          Intent = "lookup"
	IntentComparison      Intent = "comparison"
	IntentTutorial        Intent = "tutorial"
	IntentSolutionSeeking Intent = "solution-seeking"
)

// Valid reports whether i is one of the known intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentLookup, IntentComparison, IntentTutorial, IntentSolutionSeeking:
		return true
	}
	return false
}

// Content formats a page can be written in.
const (
	FormatComparisonTable  = "comparison-table"
	FormatHowToGuide       = "how-to-guide"
	FormatSolutionOverview = "solution-overview"
	FormatReferenceSnippet = "reference-snippet"
)

// Micro intents and broad intents reported by Classify.
const (
	MicroComparison  = "comparison"
	MicroQuickLookup = "quick-lookup"

	BroadResearch        = "research"
	BroadSolutionSeeking = "solution-seeking"
)

// Attribute keywords picked out of prompts, in report order.
var promptAttributes = []string{"latency", "scalability", "cost"}

// Keyword sets. Phrases and long words match as substrings; short words that
// occur inside unrelated words ("top" in "laptop") must match a whole token.
var (
	comparisonPhrases = []string{"compare", "versus"}
	comparisonTokens  = []string{"vs"}
	tutorialPhrases   = []string{"how to", "tutorial", "guide"}
	solutionTokens    = []string{"best", "top", "which"}
)

// DetectIntent classifies a query by keyword. Comparison wins over tutorial,
// tutorial over solution-seeking; anything else is a lookup.
func DetectIntent(query string) Intent {
	q := newKeywordText(query)
	switch {
	case q.hasPhrase(comparisonPhrases) || q.hasToken(comparisonTokens):
		return IntentComparison
	case q.hasPhrase(tutorialPhrases):
		return IntentTutorial
	case q.hasToken(solutionTokens):
		return IntentSolutionSeeking
	default:
		return IntentLookup
	}
}

// ContentFormat maps an intent to the page format that serves it.
// Unknown intents get a reference snippet.
func ContentFormat(intent Intent) string {
	switch intent {
	case IntentComparison:
		return FormatComparisonTable
	case IntentTutorial:
		return FormatHowToGuide
	case IntentSolutionSeeking:
		return FormatSolutionOverview
	default:
		return FormatReferenceSnippet
	}
}

// PromptElements are the pieces pulled out of a conversational prompt.
// Entities and questions are left to embedding matching and stay empty.
type PromptElements struct {
	Entities   []string
	Attributes []string
	Intents    []string
	Questions  []string
}

// ExtractPrompt pulls intents ("comparison", "how-to") and quality
// attributes out of a free-form prompt.
func ExtractPrompt(prompt string) PromptElements {
	q := newKeywordText(prompt)
	el := PromptElements{
		Entities:   []string{},
		Attributes: []string{},
		Intents:    []string{},
		Questions:  []string{},
	}
	if q.hasPhrase(comparisonPhrases) || q.hasToken(comparisonTokens) {
		el.Intents = append(el.Intents, MicroComparison)
	}
	if q.hasPhrase(tutorialPhrases) {
		el.Intents = append(el.Intents, "how-to")
	}
	for _, a := range promptAttributes {
		if strings.Contains(q.text, a) {
			el.Attributes = append(el.Attributes, a)
		}
	}
	return el
}

// Classification is the broad and micro intent of a query.
type Classification struct {
	Query       string
	Entity      string
	Intent      string
	MicroIntent string
}

// Classify derives the micro intent from the prompt's extracted intents:
// comparisons are research, everything else is a quick lookup made while
// seeking a solution.
func Classify(query string) Classification {
	el := ExtractPrompt(query)
	c := Classification{Query: query, Intent: BroadSolutionSeeking, MicroIntent: MicroQuickLookup}
	for _, in := range el.Intents {
		if in == MicroComparison {
			c.Intent, c.MicroIntent = BroadResearch, MicroComparison
			break
		}
	}
	if len(el.Entities) > 0 {
		c.Entity = el.Entities[0]
	}
	return c
}

// keywordText is a lowercased, whitespace-normalized text and its tokens.
type keywordText struct {
	text   string
	tokens map[string]struct{}
}

func newKeywordText(s string) keywordText {
	text := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	tokens := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		tokens[tok] = struct{}{}
	}
	return keywordText{text: text, tokens: tokens}
}

func (k keywordText) hasPhrase(phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(k.text, p) {
			return true
		}
	}
	return false
}

func (k keywordText) hasToken(words []string) bool {
	for _, w := range words {
		if _, ok := k.tokens[w]; ok {
			return true
		}
	}
	return false
}
