package toolserver

import (
	"fmt"
	"strconv"
	"strings"
)

// SelectionReason classifies why a selection was rejected.
type SelectionReason string

const (
	ReasonOutOfRange     SelectionReason = "out_of_range"
	ReasonUnknownID      SelectionReason = "unknown_id"
	ReasonMissingContext SelectionReason = "missing_context"
)

// SelectionError reports a rejected tool-server selection. Token carries the
// offending input for the token-level reasons; Servers names the offending
// descriptors for ReasonMissingContext.
type SelectionError struct {
	Reason  SelectionReason
	Token   string
	Servers []string
}

func (e *SelectionError) Error() string {
	switch e.Reason {
	case ReasonOutOfRange:
		return fmt.Sprintf("tool server number '%s' is out of range", e.Token)
	case ReasonUnknownID:
		return fmt.Sprintf("unknown tool server '%s'", e.Token)
	case ReasonMissingContext:
		return fmt.Sprintf("tool server(s) %s require at least one context directory", strings.Join(e.Servers, ", "))
	}
	return fmt.Sprintf("invalid tool server selection '%s'", e.Token)
}

// selectionDelimiter splits a raw selection into tokens.
const selectionDelimiter = ","

func splitTokens(raw string) []string {
	var tokens []string
	for _, t := range strings.Split(raw, selectionDelimiter) {
		t = strings.TrimSpace(t)
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// resolveToken maps one token to a descriptor. A token that parses as an
// integer is a 1-based ordinal into the registry's stable listing order;
// anything else is a direct id.
func resolveToken(token string, reg *Registry) (Descriptor, error) {
	if n, err := strconv.Atoi(token); err == nil {
		if n < 1 || n > reg.Len() {
			return Descriptor{}, &SelectionError{Reason: ReasonOutOfRange, Token: token}
		}
		return reg.List()[n-1], nil
	}
	d, ok := reg.Lookup(token)
	if !ok {
		return Descriptor{}, &SelectionError{Reason: ReasonUnknownID, Token: token}
	}
	return d, nil
}

// Select resolves a comma-delimited selection strictly: the first invalid
// token fails the whole selection. Input order is preserved and duplicates
// are kept; launching a server twice is redundant but harmless.
func Select(raw string, reg *Registry) ([]Descriptor, error) {
	var selected []Descriptor
	for _, token := range splitTokens(raw) {
		d, err := resolveToken(token, reg)
		if err != nil {
			return nil, err
		}
		selected = append(selected, d)
	}
	return selected, nil
}

// SelectLoose resolves a selection permissively, for interactive use: each
// invalid token is reported through warn and skipped. When no valid entries
// remain, the fallback set is returned instead.
func SelectLoose(raw string, reg *Registry, fallback []Descriptor, warn func(string)) []Descriptor {
	var selected []Descriptor
	for _, token := range splitTokens(raw) {
		d, err := resolveToken(token, reg)
		if err != nil {
			if warn != nil {
				warn(err.Error())
			}
			continue
		}
		selected = append(selected, d)
	}
	if len(selected) == 0 {
		return fallback
	}
	return selected
}

// CheckContextPaths verifies that every selected server which needs context
// directories can get one. The caller decides when to run this: at selection
// time interactively, at session configuration on the scripted path.
func CheckContextPaths(selected []Descriptor, contextPaths []string) error {
	if len(contextPaths) > 0 {
		return nil
	}
	var offending []string
	for _, d := range selected {
		if d.RequiresContextPaths {
			offending = append(offending, d.ID)
		}
	}
	if len(offending) == 0 {
		return nil
	}
	return &SelectionError{Reason: ReasonMissingContext, Servers: offending}
}
