package acl

import "github.com/obadir/obad/internal/filter"

// Request describes the access being requested, used to select applicable
// rules and evaluate their ACEs.
type Request struct {
	RequesterDN    string
	Anonymous      bool
	TargetDN       string
	TargetEntry    filter.Entry
	RequestFilter  *filter.Filter // set for search-time reads
	RequestedAttrs []string
	Required       Level
}

// Decide walks rules in order (spec.md §4.4's Decision), returning true the
// moment an ACE grants the required level, and stopping evaluation
// entirely on a Control of Stop. A rule whose What doesn't select the
// target is skipped. Within a selected rule, ACEs are checked in source
// order; a Who match that doesn't reach the required level applies its
// Control: Break moves to the next rule, Continue tries the rule's next
// ACE, Stop denies immediately and ends evaluation. No rule granting
// access is an overall deny.
func Decide(rules []*Rule, req Request, lookupGroup GroupLookup) (bool, error) {
	for _, rule := range rules {
		selected, err := MatchesWhat(rule.What, req.TargetDN, req.TargetEntry, req.RequestFilter, req.RequestedAttrs)
		if err != nil {
			return false, err
		}
		if !selected {
			continue
		}

		allow, stop, err := evaluateACEs(rule.ACEs, req, lookupGroup)
		if err != nil {
			return false, err
		}
		if allow {
			return true, nil
		}
		if stop {
			return false, nil
		}
	}

	return false, nil
}

// evaluateACEs walks one rule's ACEs in order. It returns allow=true as
// soon as a matching ACE meets the required level, and stop=true when a
// non-granting match's control is Stop.
func evaluateACEs(aces []ACE, req Request, lookupGroup GroupLookup) (allow bool, stop bool, err error) {
	for _, ace := range aces {
		matched, err := MatchesWho(ace.Who, req.RequesterDN, req.Anonymous, req.TargetDN, req.TargetEntry, lookupGroup)
		if err != nil {
			return false, false, err
		}
		if !matched {
			continue
		}

		if ace.Level >= req.Required {
			return true, false, nil
		}

		switch ace.Control {
		case ControlStop:
			return false, true, nil
		case ControlContinue:
			continue
		case ControlBreak:
			return false, false, nil
		}
	}

	return false, false, nil
}
