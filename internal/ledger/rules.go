package ledger

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

// Direction restricts a kind rule to debits or credits.
type Direction string

const (
	DirectionAny    Direction = ""
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// CategoryRule maps a keyword set to a category.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Category Category `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// CodeRule maps bank historical codes to a category.
type CodeRule struct {
	Name     string   `yaml:"name"`
	Category Category `yaml:"category"`
	Codes    []int    `yaml:"codes"`
}

// KindRule maps a keyword set to an inferred movement kind.
type KindRule struct {
	Kind      Kind      `yaml:"kind"`
	Direction Direction `yaml:"direction"`
	Keywords  []string  `yaml:"keywords"`
}

// Rules holds every table the normalizer evaluates. Slices are ordered;
// the first matching entry wins.
type Rules struct {
	BalanceMarkers     []string       `yaml:"balance_markers"`
	BalanceSources     []string       `yaml:"balance_sources"`
	DebitKeywords      []string       `yaml:"debit_keywords"`
	DebitCodes         []int          `yaml:"debit_codes"`
	DebitCategories    []CategoryRule `yaml:"debit_categories"`
	CreditCategories   []CategoryRule `yaml:"credit_categories"`
	CodeFallbacks      []CodeRule     `yaml:"code_fallbacks"`
	Kinds              []KindRule     `yaml:"kinds"`
	CreditCardKeywords []string       `yaml:"credit_card_keywords"`
	BoletoKeywords     []string       `yaml:"boleto_keywords"`

	debitCodes map[int]bool
}

// LoadEmbedded returns the rule tables compiled into the binary.
func LoadEmbedded() (*Rules, error) {
	return NewRules(embeddedRules)
}

// NewRules parses and validates rule tables from YAML. Keywords are
// normalized with NormalizeText so the file may carry accents.
func NewRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	normalizeAll(r.BalanceMarkers)
	normalizeAll(r.BalanceSources)
	normalizeAll(r.DebitKeywords)
	normalizeAll(r.CreditCardKeywords)
	normalizeAll(r.BoletoKeywords)

	for _, set := range [][]CategoryRule{r.DebitCategories, r.CreditCategories} {
		for i := range set {
			rule := &set[i]
			if !ValidCategory(rule.Category) {
				return nil, fmt.Errorf("rule %q: invalid category %q", rule.Name, rule.Category)
			}
			if len(rule.Keywords) == 0 {
				return nil, fmt.Errorf("rule %q: no keywords", rule.Name)
			}
			if err := normalizeKeywords(rule.Keywords); err != nil {
				return nil, fmt.Errorf("rule %q: %w", rule.Name, err)
			}
		}
	}

	for _, rule := range r.CodeFallbacks {
		if !ValidCategory(rule.Category) {
			return nil, fmt.Errorf("rule %q: invalid category %q", rule.Name, rule.Category)
		}
		if len(rule.Codes) == 0 {
			return nil, fmt.Errorf("rule %q: no codes", rule.Name)
		}
	}

	for i := range r.Kinds {
		rule := &r.Kinds[i]
		if !validKinds[rule.Kind] {
			return nil, fmt.Errorf("kind rule %d: invalid kind %q", i, rule.Kind)
		}
		switch rule.Direction {
		case DirectionAny, DirectionDebit, DirectionCredit:
		default:
			return nil, fmt.Errorf("kind rule %d: invalid direction %q", i, rule.Direction)
		}
		if err := normalizeKeywords(rule.Keywords); err != nil {
			return nil, fmt.Errorf("kind rule %d: %w", i, err)
		}
	}

	r.debitCodes = make(map[int]bool, len(r.DebitCodes))
	for _, c := range r.DebitCodes {
		r.debitCodes[c] = true
	}

	return &r, nil
}

func normalizeAll(words []string) {
	for i, w := range words {
		words[i] = NormalizeText(w)
	}
}

func normalizeKeywords(words []string) error {
	for i, w := range words {
		n := NormalizeText(w)
		if n == "" {
			return fmt.Errorf("keyword %q is empty after normalization", w)
		}
		words[i] = n
	}
	return nil
}
