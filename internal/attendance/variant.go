package attendance

import (
	"strconv"
	"strings"
)

// Variant names the event-encoding scheme exposed by the vendor schema.
type Variant string

const (
	VariantEventTypeJoin Variant = "EVENTTYPE_to_EventID"
	VariantEventIDJoin   Variant = "EVENTID_to_EventID"
	VariantInOutOnly     Variant = "TEVENT_InOut_only"
	VariantEventTextOnly Variant = "TEVENT_Event_text_only"
	VariantUnsupported   Variant = "UNSUPPORTED"
)

// FlagSource says which table the flag column lives on.
type FlagSource int

const (
	FlagFromNone FlagSource = iota
	FlagFromEvent
	FlagFromEventType
)

// RawFlag is the undecoded flag as read by the query layer: the flag
// column and the optional fallback text column, both rendered as text.
type RawFlag struct {
	Value    *string
	Fallback *string
}

// Clause is one (predicate, result) pair of a Rule.
type Clause struct {
	Name  string
	Match func(RawFlag) bool
	State State
}

// Rule decodes a RawFlag. Clauses are evaluated in order and the first
// match wins; no match means the polarity is unknown.
type Rule []Clause

// Decode returns the state of the first matching clause, or nil.
func (r Rule) Decode(f RawFlag) *State {
	for _, c := range r {
		if c.Match(f) {
			return Flag(c.State)
		}
	}
	return nil
}

// VariantPlan is everything the query layer needs to read flags for a
// detected variant.
type VariantPlan struct {
	Variant Variant

	// JoinEventCol on the event table joins JoinTypeCol on the event-type
	// table. Both are empty for the single-table variants.
	JoinEventCol string
	JoinTypeCol  string

	FlagSource  FlagSource
	FlagCol     string
	FallbackCol string // always on the event-type table

	Rule Rule
}

// Supported reports whether the plan can produce any events at all.
func (p VariantPlan) Supported() bool { return p.Variant != VariantUnsupported }

// Joined reports whether the plan reads flags through the event-type table.
func (p VariantPlan) Joined() bool { return p.JoinEventCol != "" && p.JoinTypeCol != "" }

// Decode applies the plan's rule to f.
func (p VariantPlan) Decode(f RawFlag) *State {
	if !p.Supported() {
		return nil
	}
	return p.Rule.Decode(f)
}

// DetectVariant classifies the event encoding of m, trying the type join
// by EventType, the type join by EventID, an InOut column and finally a
// free-text Event column.
func DetectVariant(m SchemaMapping) VariantPlan {
	evType := pickFirst(m.EventColumns, "EventType")
	evID := pickFirst(m.EventColumns, "EventID")
	evInOut := pickFirst(m.EventColumns, "InOut")
	evText := pickFirst(m.EventColumns, "Event")

	typeID := pickFirst(m.EventTypeColumns, "EventID")
	typeInOut := pickFirst(m.EventTypeColumns, "InOut")
	typeText := pickFirst(m.EventTypeColumns, "Event")

	joined := func(v Variant, eventCol string) VariantPlan {
		p := VariantPlan{Variant: v, JoinEventCol: eventCol, JoinTypeCol: typeID}
		switch {
		case typeInOut != "":
			p.FlagSource = FlagFromEventType
			p.FlagCol = typeInOut
			p.FallbackCol = typeText
			p.Rule = NormalizedRule(typeText != "")
		case typeText != "":
			p.FlagSource = FlagFromEventType
			p.FlagCol = typeText
			p.Rule = EntryExitRule()
		default:
			p.FlagSource = FlagFromNone
		}
		return p
	}

	switch {
	case evType != "" && typeID != "":
		return joined(VariantEventTypeJoin, evType)
	case evID != "" && typeID != "":
		return joined(VariantEventIDJoin, evID)
	case evInOut != "":
		return VariantPlan{
			Variant:    VariantInOutOnly,
			FlagSource: FlagFromEvent,
			FlagCol:    evInOut,
			Rule:       NormalizedRule(false),
		}
	case evText != "":
		return VariantPlan{
			Variant:    VariantEventTextOnly,
			FlagSource: FlagFromEvent,
			FlagCol:    evText,
			Rule:       EntryExitRule(),
		}
	}
	return VariantPlan{Variant: VariantUnsupported}
}

var (
	inTokens  = map[string]struct{}{"IN": {}, "I": {}, "ENTRY": {}, "ENTER": {}}
	outTokens = map[string]struct{}{"OUT": {}, "O": {}, "EXIT": {}, "LEAVE": {}}
)

// NormalizedRule is the canonical rule for numeric or token flag columns.
// withFallback appends Entry/Exit prefix clauses on the fallback text.
func NormalizedRule(withFallback bool) Rule {
	r := Rule{
		{Name: "numeric 1", Match: numericIs(1), State: In},
		{Name: "numeric 0", Match: numericIs(0), State: Out},
		{Name: "numeric 2", Match: numericIs(2), State: Out},
		{Name: "numeric -1", Match: numericIs(-1), State: Out},
		{Name: "in token", Match: tokenIn(inTokens), State: In},
		{Name: "out token", Match: tokenIn(outTokens), State: Out},
		{Name: "entry prefix", Match: valuePrefix("Entry"), State: In},
		{Name: "exit prefix", Match: valuePrefix("Exit"), State: Out},
	}
	if withFallback {
		r = append(r,
			Clause{Name: "fallback entry prefix", Match: fallbackPrefix("Entry"), State: In},
			Clause{Name: "fallback exit prefix", Match: fallbackPrefix("Exit"), State: Out},
		)
	}
	return r
}

// EntryExitRule matches free event text by its Entry/Exit prefix.
func EntryExitRule() Rule {
	return Rule{
		{Name: "entry prefix", Match: valuePrefix("Entry"), State: In},
		{Name: "exit prefix", Match: valuePrefix("Exit"), State: Out},
	}
}

func numericIs(want float64) func(RawFlag) bool {
	return func(f RawFlag) bool {
		if f.Value == nil {
			return false
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(*f.Value), 64)
		return err == nil && n == want
	}
}

func tokenIn(set map[string]struct{}) func(RawFlag) bool {
	return func(f RawFlag) bool {
		if f.Value == nil {
			return false
		}
		_, ok := set[strings.ToUpper(strings.TrimSpace(*f.Value))]
		return ok
	}
}

func valuePrefix(prefix string) func(RawFlag) bool {
	return func(f RawFlag) bool { return hasPrefixFold(f.Value, prefix) }
}

func fallbackPrefix(prefix string) func(RawFlag) bool {
	return func(f RawFlag) bool { return hasPrefixFold(f.Fallback, prefix) }
}

func hasPrefixFold(v *string, prefix string) bool {
	if v == nil || len(*v) < len(prefix) {
		return false
	}
	return strings.EqualFold((*v)[:len(prefix)], prefix)
}
