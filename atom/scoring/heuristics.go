package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jasontalley/pact/internal/util"
)

// Heuristic names are stable identifiers surfaced in violations and reports.
const (
	HeuristicSingleResponsibility   = "single-responsibility"
	HeuristicObservableOutcome      = "observable-outcome"
	HeuristicImplementationAgnostic = "implementation-agnostic"
	HeuristicMeasurableCriteria     = "measurable-criteria"
	HeuristicReasonableScope        = "reasonable-scope"
)

// HeuristicMax is the ceiling of every individual heuristic score.
const HeuristicMax = 20

// HeuristicResult is one heuristic's verdict on a description.
type HeuristicResult struct {
	Name       string `json:"name"`
	Score      int    `json:"score"`
	MaxScore   int    `json:"max_score"`
	Passed     bool   `json:"passed"`
	Violation  string `json:"violation,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// conjunctionPattern catches compound statements joining multiple behaviors.
// The multi-word phrase comes first so it wins over its constituent words.
var conjunctionPattern = regexp.MustCompile(`(?i)\b(as well as|and|or|also|additionally|plus|then)\b`)

// scoreSingleResponsibility docks 10 points per conjunction, floor 0.
func scoreSingleResponsibility(description string) HeuristicResult {
	matches := conjunctionPattern.FindAllString(description, -1)
	result := HeuristicResult{
		Name:     HeuristicSingleResponsibility,
		Score:    util.ClampInt(HeuristicMax-10*len(matches), 0, HeuristicMax),
		MaxScore: HeuristicMax,
		Passed:   len(matches) == 0,
	}
	if !result.Passed {
		result.Violation = fmt.Sprintf("compound statement: %d conjunction(s) found (%s)", len(matches), strings.ToLower(strings.Join(matches, ", ")))
		result.Suggestion = "split into one atom per behavior"
	}
	return result
}

type namedPattern struct {
	name    string
	pattern *regexp.Regexp
}

// observablePatterns recognize externally visible effects. Each distinct
// pattern matched awards 10 points, capped at the heuristic max.
var observablePatterns = []namedPattern{
	{"display", regexp.MustCompile(`(?i)\bdisplay(s|ed|ing)?\b`)},
	{"show", regexp.MustCompile(`(?i)\bshow(s|n|ed|ing)?\b`)},
	{"return", regexp.MustCompile(`(?i)\breturn(s|ed|ing)?\b`)},
	{"respond", regexp.MustCompile(`(?i)\brespon(d|ds|ded|ding|se)\b`)},
	{"notify", regexp.MustCompile(`(?i)\bnotif(y|ies|ied|ication|ications)\b`)},
	{"emit", regexp.MustCompile(`(?i)\bemit(s|ted|ting)?\b`)},
	{"log", regexp.MustCompile(`(?i)\blog(s|ged|ging)?\b`)},
	{"redirect", regexp.MustCompile(`(?i)\bredirect(s|ed|ing)?\b`)},
	{"receive", regexp.MustCompile(`(?i)\breceives?\b`)},
	{"appear", regexp.MustCompile(`(?i)\bappears?\b`)},
	{"user can see", regexp.MustCompile(`(?i)user can see`)},
	{"is visible", regexp.MustCompile(`(?i)is (visible|shown|displayed)`)},
}

// scoreObservableOutcome awards 10 points per distinct observable pattern.
func scoreObservableOutcome(description string) HeuristicResult {
	var found []string
	for _, np := range observablePatterns {
		if np.pattern.MatchString(description) {
			found = append(found, np.name)
		}
	}
	result := HeuristicResult{
		Name:     HeuristicObservableOutcome,
		Score:    util.ClampInt(10*len(found), 0, HeuristicMax),
		MaxScore: HeuristicMax,
		Passed:   len(found) > 0,
	}
	if !result.Passed {
		result.Violation = "no observable outcome: nothing a user or system could verify externally"
		result.Suggestion = "describe what is displayed, returned, emitted, or otherwise visible when the behavior occurs"
	}
	return result
}

// Technology vocabulary and implementation phrasing. Atoms state behavior,
// not mechanism.
var (
	techTermPattern = regexp.MustCompile(`(?i)\b(sql|database|postgres|mysql|sqlite|mongodb|http|https|rest|grpc|graphql|kafka|rabbitmq|redis|memcached|react|vue|angular|docker|kubernetes|lambda|microservices?|webhooks?|jwt|oauth|websockets?|cron)\b`)
	implPhrasePattern = regexp.MustCompile(`(?i)\b(using|via|stored in|implemented with|by calling|invokes?|through the)\b`)
)

// scoreImplementationAgnostic docks 5 points per technology term or
// implementation phrase, floor 0.
func scoreImplementationAgnostic(description string) HeuristicResult {
	terms := techTermPattern.FindAllString(description, -1)
	phrases := implPhrasePattern.FindAllString(description, -1)
	count := len(terms) + len(phrases)

	result := HeuristicResult{
		Name:     HeuristicImplementationAgnostic,
		Score:    util.ClampInt(HeuristicMax-5*count, 0, HeuristicMax),
		MaxScore: HeuristicMax,
		Passed:   count == 0,
	}
	if !result.Passed {
		all := append(append([]string{}, terms...), phrases...)
		result.Violation = fmt.Sprintf("implementation detail leaks into intent: %s", strings.ToLower(strings.Join(all, ", ")))
		result.Suggestion = "state the behavior without naming technologies or mechanisms"
	}
	return result
}

var (
	// measurableIndicatorPattern counts concrete quantities: digit runs,
	// comparative phrases, and common units.
	measurableIndicatorPattern = regexp.MustCompile(`(?i)\d+|\bwithin\b|\bat least\b|\bat most\b|\bexactly\b|\bless than\b|\bgreater than\b|\bno more than\b|%|\bms\b|\bmilliseconds?\b|\bseconds?\b|\bminutes?\b`)

	// vagueTermPattern counts qualifiers that defeat measurement.
	vagueTermPattern = regexp.MustCompile(`(?i)\b(quickly|fast|slow|slowly|easily|user-friendly|intuitive|intuitively|efficient|efficiently|appropriate|appropriately|reasonable|reasonably|seamless|seamlessly|robust|simple|simply|good|better|nice)\b`)
)

// scoreMeasurableCriteria nets concrete indicators against vague qualifiers:
// score = clamp(10 + net*5, 0, 20). Passes on positive net, or on any
// indicator with zero vagueness.
func scoreMeasurableCriteria(description string) HeuristicResult {
	indicators := measurableIndicatorPattern.FindAllString(description, -1)
	vague := vagueTermPattern.FindAllString(description, -1)
	net := len(indicators) - len(vague)

	result := HeuristicResult{
		Name:     HeuristicMeasurableCriteria,
		Score:    util.ClampInt(10+net*5, 0, HeuristicMax),
		MaxScore: HeuristicMax,
		Passed:   net > 0 || (len(indicators) > 0 && len(vague) == 0),
	}
	if !result.Passed {
		if len(vague) > 0 {
			result.Violation = fmt.Sprintf("vague qualifiers outweigh measurable criteria: %s", strings.ToLower(strings.Join(vague, ", ")))
			result.Suggestion = "replace vague qualifiers with numbers, thresholds, or units"
		} else {
			result.Violation = "no measurable criteria: nothing to quantify a pass against"
			result.Suggestion = "add a concrete threshold, count, or time bound"
		}
	}
	return result
}

var (
	tooBroadPattern  = regexp.MustCompile(`(?i)\b(entire system|whole system|all features|everything|everywhere|all users|any input|comprehensive|complete overhaul|always works|never fails)\b`)
	tooNarrowPattern = regexp.MustCompile(`(?i)\b(button color|button colour|pixels?|font size|font family|margins?|paddings?|hex code)\b`)
)

// Scope word-count bounds. Below the floor a description cannot state a
// falsifiable behavior; above the ceiling it is describing a feature, not
// an atom.
const (
	minScopeWords = 5
	maxScopeWords = 50
)

// failingScopeScore is the fixed score for an out-of-scope description.
const failingScopeScore = 5

// scoreReasonableScope fails on breadth terms, narrowness terms, or word
// counts outside [5, 50]. Pass scores 20, fail scores 5.
func scoreReasonableScope(description string) HeuristicResult {
	var reasons []string
	if m := tooBroadPattern.FindString(description); m != "" {
		reasons = append(reasons, fmt.Sprintf("scope too broad (%q)", strings.ToLower(m)))
	}
	if m := tooNarrowPattern.FindString(description); m != "" {
		reasons = append(reasons, fmt.Sprintf("scope too narrow (%q)", strings.ToLower(m)))
	}
	words := len(strings.Fields(description))
	if words < minScopeWords {
		reasons = append(reasons, fmt.Sprintf("description too short (%d words)", words))
	} else if words > maxScopeWords {
		reasons = append(reasons, fmt.Sprintf("description too long (%d words)", words))
	}

	result := HeuristicResult{
		Name:     HeuristicReasonableScope,
		Score:    HeuristicMax,
		MaxScore: HeuristicMax,
		Passed:   len(reasons) == 0,
	}
	if !result.Passed {
		result.Score = failingScopeScore
		result.Violation = strings.Join(reasons, "; ")
		result.Suggestion = "scope the atom to one falsifiable behavior of 5-50 words"
	}
	return result
}

// runHeuristics evaluates all five heuristics in their fixed order.
func runHeuristics(description string) []HeuristicResult {
	return []HeuristicResult{
		scoreSingleResponsibility(description),
		scoreObservableOutcome(description),
		scoreImplementationAgnostic(description),
		scoreMeasurableCriteria(description),
		scoreReasonableScope(description),
	}
}
