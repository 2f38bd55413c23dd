package attendance

import "time"

// State is the canonical punch polarity.
type State int8

const (
	Out State = 0
	In  State = 1
)

func (s State) String() string {
	if s == In {
		return "IN"
	}
	return "OUT"
}

// Invert flips IN and OUT.
func (s State) Invert() State {
	if s == In {
		return Out
	}
	return In
}

// Flag returns a pointer to s, for building RawEvents.
func Flag(s State) *State { return &s }

// RawEvent is a single punch as returned by the query layer. Flag is nil
// when the stored value could not be decoded.
type RawEvent struct {
	Time time.Time
	Flag *State
}

// NormalizedEvent is a RawEvent after polarity resolution and gap filling.
type NormalizedEvent struct {
	Time     time.Time
	State    State
	Inferred bool
}

// Employee is the identity attached to reports.
type Employee struct {
	EmployeeID string
	CardNo     string
	Name       string
	Department string
}

// Interval is one completed IN->OUT session.
type Interval struct {
	Date    string
	In      time.Time
	Out     time.Time
	Minutes int
}

// Transaction is one punch as shown in the daily detail.
type Transaction struct {
	State    State
	Time     time.Time
	Inferred bool
}

// DayRecord is the period-level summary of one calendar day.
//
// MissingPunch is always (FirstIn == nil) XOR (LastOut == nil).
type DayRecord struct {
	Date              string
	FirstIn           *time.Time
	LastOut           *time.Time
	DurationMinutes   *int
	MissingPunch      bool
	HasRelevantEvents bool
}

// DayDetail is the full reconciliation of a single selected day.
type DayDetail struct {
	Date            string
	FirstIn         *time.Time
	LastOut         *time.Time
	DurationMinutes *int
	MissingPunch    bool
	MissingOut      bool

	Transactions    []Transaction
	Intervals       []Interval
	TotalInMinutes  int
	TotalOutMinutes int
	Notes           []string
}

// DayTotals holds minutes spent IN and OUT on one calendar day.
type DayTotals struct {
	InMinutes  int
	OutMinutes int
}

// PeriodTotals is the result of segment accumulation across a window.
type PeriodTotals struct {
	TotalInMinutes  int
	TotalOutMinutes int
	PerDay          map[string]DayTotals
}

// MappingState is the live interpretation of stored polarity.
type MappingState struct {
	MappingVariant  string
	SwapApplied     bool
	DetectorVariant Variant
	AutoDetected    bool
	ManualOverride  bool
}

const (
	MappingUnsupported = "unsupported"
	MappingSwapped     = "swapped"
	MappingNormal      = "normal"
)
