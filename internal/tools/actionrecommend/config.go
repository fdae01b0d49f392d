// internal/tools/actionrecommend/config.go
package actionrecommend

import "regexp"

// Pattern families deciding which tools a query should trigger. Informational
// phrasing always routes through vector search; personal-policy phrasing adds
// a user-policy lookup ahead of it.
var (
	informationalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`what (does|do|is|are)`),
		regexp.MustCompile(`tell me about`),
		regexp.MustCompile(`explain`),
		regexp.MustCompile(`information`),
		regexp.MustCompile(`details`),
	}

	personalPolicyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`my (policy|insurance|cover|coverage)`),
		regexp.MustCompile(`my (plan|benefits)`),
		regexp.MustCompile(`(policy|reference) number`),
		regexp.MustCompile(`policy details`),
		regexp.MustCompile(`my (sum|amount) insured`),
		regexp.MustCompile(`what (am i|are we) covered for`),
		regexp.MustCompile(`(view|show|get) my policy`),
	}

	policyIDPattern = regexp.MustCompile(`policy (?:number|id)?\s*[:#]?\s*([\w/\-]+)`)
	coveragePattern = regexp.MustCompile(`(cover(age)?|benefit)s?\s+for\s+(\w+)`)

	coverageTypePattern = regexp.MustCompile(`coverage|benefit|cover`)
	proposerTypePattern = regexp.MustCompile(`my details|personal (info|details)|proposer`)
)

// personalKeywords is a loose bag of words suggesting the query concerns the
// caller's own policy rather than general product information.
var personalKeywords = []string{"my", "details", "policy", "number", "coverage", "plan", "insurance"}

// productLineKeywords maps a product line to its trigger words. Checked in a
// fixed order; travel is the fallback when nothing matches.
var productLineKeywords = []struct {
	Line     string
	Keywords []string
}{
	{"travel", []string{"travel", "trip", "journey", "vacation", "holiday"}},
	{"health", []string{"health", "medical", "healthcare", "elevate", "standard"}},
	{"motor", []string{"auto", "car", "vehicle", "motor"}},
	{"home", []string{"home", "house", "property", "renters"}},
}

const defaultProductLine = "travel"

// defaultTopK is the fixed retrieval depth for recommended vector searches.
const defaultTopK = 3
