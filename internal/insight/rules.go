package insight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Intent labels known to the built-in rule table.
const (
	IntentSupportRequest   = "support_request"
	IntentPricingInquiry   = "pricing_inquiry"
	IntentUpgradeInquiry   = "upgrade_inquiry"
	IntentExpansionInquiry = "expansion_inquiry"
	IntentChurnRisk        = "churn_risk"
	IntentFeatureRequest   = "feature_request"
	IntentProductFeedback  = "product_feedback"
)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

const (
	DefaultFallbackAction = "Follow up with the customer"
	DefaultBaseRisk       = 0.30
)

// IntentRule binds an intent label to the phrases that signal it.
type IntentRule struct {
	Label      string   `yaml:"label"`
	Keywords   []string `yaml:"keywords"`
	NextAction string   `yaml:"next_action"`
	BaseRisk   float64  `yaml:"base_risk"`
}

// Rules holds the lookup tables used by the engine. Intents are ordered: when two
// labels score the same, the one listed first wins.
type Rules struct {
	Intents          []IntentRule `yaml:"intents"`
	FallbackIntent   string       `yaml:"fallback_intent"`
	FallbackAction   string       `yaml:"fallback_action"`
	DefaultBaseRisk  float64      `yaml:"default_base_risk"`
	PositiveKeywords []string     `yaml:"positive_keywords"`
	NegativeKeywords []string     `yaml:"negative_keywords"`
	UrgencyKeywords  []string     `yaml:"urgency_keywords"`
	ReliefKeywords   []string     `yaml:"relief_keywords"`
}

var defaultRules = Rules{
	Intents: []IntentRule{
		{
			Label:      IntentSupportRequest,
			Keywords:   []string{"issue", "support", "help", "bug", "error", "technical"},
			NextAction: "Escalate to technical support",
			BaseRisk:   0.55,
		},
		{
			Label:      IntentPricingInquiry,
			Keywords:   []string{"pricing", "cost", "quote", "invoice", "billing"},
			NextAction: "Review pricing options",
			BaseRisk:   0.55,
		},
		{
			Label:      IntentUpgradeInquiry,
			Keywords:   []string{"upgrade", "professional plan", "advanced", "add-on", "new features"},
			NextAction: "Coordinate upgrade walkthrough",
			BaseRisk:   0.20,
		},
		{
			Label:      IntentExpansionInquiry,
			Keywords:   []string{"expand", "new location", "grow", "scale", "hiring"},
			NextAction: "Provide expansion playbook",
			BaseRisk:   DefaultBaseRisk,
		},
		{
			Label:      IntentChurnRisk,
			Keywords:   []string{"cancel", "cancellation", "frustrated", "switch", "refund"},
			NextAction: "Schedule immediate retention call",
			BaseRisk:   0.85,
		},
		{
			Label:      IntentFeatureRequest,
			Keywords:   []string{"feature", "request", "wishlist", "roadmap", "enhancement"},
			NextAction: "Share product roadmap update",
			BaseRisk:   DefaultBaseRisk,
		},
		{
			Label:      IntentProductFeedback,
			Keywords:   []string{"feedback", "improvement", "like", "suggestion"},
			NextAction: "Thank customer & log feedback",
			BaseRisk:   DefaultBaseRisk,
		},
	},
	FallbackIntent:  IntentSupportRequest,
	FallbackAction:  DefaultFallbackAction,
	DefaultBaseRisk: DefaultBaseRisk,
	PositiveKeywords: []string{
		"great", "love", "growing", "expanding", "happy",
		"perfect", "excited", "improvement", "upgrade", "success",
	},
	NegativeKeywords: []string{
		"issue", "problem", "frustration", "angry", "cancel", "churn",
		"urgent", "bug", "challenge", "wrong", "delay",
	},
	UrgencyKeywords: []string{"urgent", "immediately"},
	ReliefKeywords:  []string{"happy", "excited"},
}

// DefaultRules returns a copy of the built-in rule tables.
func DefaultRules() *Rules {
	return defaultRules.Clone()
}

// Clone returns a deep copy so callers can never mutate tables an engine reads.
func (r *Rules) Clone() *Rules {
	out := &Rules{
		FallbackIntent:   r.FallbackIntent,
		FallbackAction:   r.FallbackAction,
		DefaultBaseRisk:  r.DefaultBaseRisk,
		PositiveKeywords: slices.Clone(r.PositiveKeywords),
		NegativeKeywords: slices.Clone(r.NegativeKeywords),
		UrgencyKeywords:  slices.Clone(r.UrgencyKeywords),
		ReliefKeywords:   slices.Clone(r.ReliefKeywords),
		Intents:          make([]IntentRule, len(r.Intents)),
	}
	for i, rule := range r.Intents {
		rule.Keywords = slices.Clone(rule.Keywords)
		out.Intents[i] = rule
	}
	return out
}

// Labels returns intent labels in tie-break order.
func (r *Rules) Labels() []string {
	labels := make([]string, len(r.Intents))
	for i, rule := range r.Intents {
		labels[i] = rule.Label
	}
	return labels
}

// NextAction returns the recommendation for an intent, or the fallback action.
func (r *Rules) NextAction(intent string) string {
	for _, rule := range r.Intents {
		if rule.Label == intent && rule.NextAction != "" {
			return rule.NextAction
		}
	}
	return r.FallbackAction
}

func (r *Rules) baseRisk(intent string) float64 {
	for _, rule := range r.Intents {
		if rule.Label == intent {
			return rule.BaseRisk
		}
	}
	return r.DefaultBaseRisk
}

// Validate reports the first structural problem in the tables.
func (r *Rules) Validate() error {
	if len(r.Intents) == 0 {
		return errors.New("rules: at least one intent is required")
	}
	seen := make(map[string]struct{}, len(r.Intents))
	for i, rule := range r.Intents {
		if rule.Label == "" {
			return fmt.Errorf("rules: intent %d has no label", i)
		}
		if _, dup := seen[rule.Label]; dup {
			return fmt.Errorf("rules: duplicate intent label %q", rule.Label)
		}
		seen[rule.Label] = struct{}{}
		if rule.BaseRisk < 0 || rule.BaseRisk > 1 {
			return fmt.Errorf("rules: intent %q base_risk %.2f outside [0,1]", rule.Label, rule.BaseRisk)
		}
		if slices.Contains(rule.Keywords, "") {
			return fmt.Errorf("rules: intent %q has an empty keyword", rule.Label)
		}
	}
	for _, list := range [][]string{r.PositiveKeywords, r.NegativeKeywords, r.UrgencyKeywords, r.ReliefKeywords} {
		if slices.Contains(list, "") {
			return errors.New("rules: keyword lists must not contain empty entries")
		}
	}
	if r.FallbackIntent == "" {
		return errors.New("rules: fallback_intent must not be empty")
	}
	if r.FallbackAction == "" {
		return errors.New("rules: fallback_action must not be empty")
	}
	if r.DefaultBaseRisk < 0 || r.DefaultBaseRisk > 1 {
		return fmt.Errorf("rules: default_base_risk %.2f outside [0,1]", r.DefaultBaseRisk)
	}
	return nil
}

// LoadRules reads rule tables from a YAML file. Sections left out of the file keep
// their built-in values.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rule tables on top of the defaults.
func ParseRules(data []byte) (*Rules, error) {
	var file Rules
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	rules := DefaultRules()
	if file.DefaultBaseRisk != 0 {
		rules.DefaultBaseRisk = file.DefaultBaseRisk
	}
	if len(file.Intents) > 0 {
		rules.Intents = file.Intents
		for i := range rules.Intents {
			if rules.Intents[i].BaseRisk == 0 {
				rules.Intents[i].BaseRisk = rules.DefaultBaseRisk
			}
		}
	}
	if file.FallbackIntent != "" {
		rules.FallbackIntent = file.FallbackIntent
	}
	if file.FallbackAction != "" {
		rules.FallbackAction = file.FallbackAction
	}
	if file.PositiveKeywords != nil {
		rules.PositiveKeywords = file.PositiveKeywords
	}
	if file.NegativeKeywords != nil {
		rules.NegativeKeywords = file.NegativeKeywords
	}
	if file.UrgencyKeywords != nil {
		rules.UrgencyKeywords = file.UrgencyKeywords
	}
	if file.ReliefKeywords != nil {
		rules.ReliefKeywords = file.ReliefKeywords
	}

	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}
