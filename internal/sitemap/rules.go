package sitemap

import (
	"errors"
	"log"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/vlatan/sitemap-builder/internal/models"
)

// Matcher returns the route rules matching a path,
// ordered from least to most specific.
type Matcher interface {
	Match(routePath string) []models.RouteRule
}

// MatcherFunc adapts a routing layer's lookup function to a Matcher
type MatcherFunc func(routePath string) []models.RouteRule

func (f MatcherFunc) Match(routePath string) []models.RouteRule {
	return f(routePath)
}

type compiledRule struct {
	rule      models.RouteRule
	glob      glob.Glob
	literals  int
	wildcards int
	order     int
}

// RuleMatcher is an immutable, precompiled set of route rules.
// It is safe for concurrent use.
type RuleMatcher struct {
	rules []compiledRule
}

// NewRuleMatcher compiles the route rules.
// Patterns support literal segments, "*" and ":name" for one segment
// and a trailing "**" for any number of segments.
// A pattern that fails to compile is logged and never matches.
func NewRuleMatcher(rules []models.RouteRule) *RuleMatcher {

	m := &RuleMatcher{}
	for i, rule := range rules {
		cr, err := compileRule(rule, i)
		if err != nil {
			log.Printf("Skipping route rule '%s': %v", rule.Pattern, err)
			continue
		}
		m.rules = append(m.rules, cr)
	}

	// Least specific first, so that later merges win
	slices.SortStableFunc(m.rules, func(a, b compiledRule) int {
		if a.literals != b.literals {
			return a.literals - b.literals
		}
		if a.wildcards != b.wildcards {
			return b.wildcards - a.wildcards
		}
		if len(a.rule.Pattern) != len(b.rule.Pattern) {
			return len(a.rule.Pattern) - len(b.rule.Pattern)
		}
		return a.order - b.order
	})

	return m
}

// Match returns every rule matching the route path, least specific first
func (m *RuleMatcher) Match(routePath string) []models.RouteRule {
	var matched []models.RouteRule
	for _, cr := range m.rules {
		if cr.glob.Match(routePath) {
			matched = append(matched, cr.rule)
		}
	}
	return matched
}

func compileRule(rule models.RouteRule, order int) (compiledRule, error) {

	pattern := strings.TrimSpace(rule.Pattern)
	if pattern == "" {
		return compiledRule{}, errors.New("empty pattern")
	}

	segments := strings.Split(strings.Trim(pattern, "/"), "/")
	cr := compiledRule{rule: rule, order: order}

	for i, segment := range segments {
		switch {
		case segment == "**":
			if i != len(segments)-1 {
				return compiledRule{}, errors.New("'**' must be the last segment")
			}
			cr.wildcards += 2
		case segment == "*" || strings.HasPrefix(segment, ":"):
			segments[i] = "*"
			cr.wildcards++
		case strings.ContainsAny(segment, "*?[{"):
			cr.wildcards++
		case segment != "":
			cr.literals++
		}
	}

	g, err := compileGlob("/" + strings.Join(segments, "/"))
	if err != nil {
		return compiledRule{}, err
	}

	cr.glob = g
	return cr, nil
}
