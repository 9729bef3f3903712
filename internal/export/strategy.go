package export

import "strings"

// State is a step of the export strategy. Every export walks
// Start -> TemplateAvailable|TemplateUnavailable -> ... -> a terminal state.
type State int

const (
	StateStart State = iota
	StateTemplateAvailable
	StateTemplateUnavailable
	StateTemplateFailedAtRuntime
	StateExportedWithTemplate
	StateExportedBasic
	StateFailed
)

var stateNames = map[State]string{
	StateStart:                   "START",
	StateTemplateAvailable:       "TEMPLATE_AVAILABLE",
	StateTemplateUnavailable:     "TEMPLATE_UNAVAILABLE",
	StateTemplateFailedAtRuntime: "TEMPLATE_FAILED_AT_RUNTIME",
	StateExportedWithTemplate:    "EXPORTED_WITH_TEMPLATE",
	StateExportedBasic:           "EXPORTED_BASIC",
	StateFailed:                  "FAILED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Terminal reports whether no further transition is allowed from s.
func (s State) Terminal() bool {
	return s == StateExportedWithTemplate || s == StateExportedBasic || s == StateFailed
}

// Strategy is the rendering path that produced an artifact.
type Strategy string

const (
	StrategyTemplate Strategy = "template"
	StrategyBasic    Strategy = "basic"
)

// transitions lists the legal edges. Basic runs at most once per export.
var transitions = map[State][]State{
	StateStart:                   {StateTemplateAvailable, StateTemplateUnavailable},
	StateTemplateAvailable:       {StateExportedWithTemplate, StateTemplateFailedAtRuntime},
	StateTemplateUnavailable:     {StateExportedBasic, StateFailed},
	StateTemplateFailedAtRuntime: {StateExportedBasic, StateFailed},
}

// Trace is the ordered list of states one export went through.
type Trace []State

func newTrace() Trace {
	return Trace{StateStart}
}

// Current is the last recorded state.
func (t Trace) Current() State {
	if len(t) == 0 {
		return StateStart
	}
	return t[len(t)-1]
}

// advance appends next when the edge is legal; it panics otherwise since
// an illegal edge is a programming error.
func (t *Trace) advance(next State) {
	cur := t.Current()
	for _, allowed := range transitions[cur] {
		if allowed == next {
			*t = append(*t, next)
			return
		}
	}
	panic("export: illegal transition " + cur.String() + " -> " + next.String())
}

func (t Trace) String() string {
	names := make([]string, len(t))
	for i, s := range t {
		names[i] = s.String()
	}
	return strings.Join(names, ">")
}
