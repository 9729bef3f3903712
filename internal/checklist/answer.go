package checklist

import (
	"fmt"
	"strings"
)

// Answer is the tri-state checklist answer. The zero value means unanswered.
type Answer int

const (
	Unset Answer = iota
	Complies
	DoesNotComply
	NotApplicable
)

var answerCodes = map[Answer]string{
	Complies:      "CUMPLE",
	DoesNotComply: "NO_CUMPLE",
	NotApplicable: "NO_APLICA",
}

var answerLabels = map[Answer]string{
	Complies:      "Cumple",
	DoesNotComply: "No cumple",
	NotApplicable: "No aplica",
}

// Spellings seen in stored rows and client payloads, after folding.
var answerAliases = map[string]Answer{
	"cumple":          Complies,
	"si":              Complies,
	"c":               Complies,
	"complies":        Complies,
	"no cumple":       DoesNotComply,
	"no":              DoesNotComply,
	"nc":              DoesNotComply,
	"does not comply": DoesNotComply,
	"no aplica":       NotApplicable,
	"n/a":             NotApplicable,
	"na":              NotApplicable,
	"not applicable":  NotApplicable,
}

// ParseAnswer accepts the stored codes (CUMPLE, NO_CUMPLE, NO_APLICA), their
// English equivalents and common short forms. Blank input is Unset.
func ParseAnswer(s string) (Answer, error) {
	key := fold(s)
	if key == "" {
		return Unset, nil
	}
	if a, ok := answerAliases[key]; ok {
		return a, nil
	}
	return Unset, fmt.Errorf("unknown answer %q", s)
}

// Code is the value persisted in respuestas.respuesta.
func (a Answer) Code() string {
	return answerCodes[a]
}

// Label is the human text used by the basic sheet.
func (a Answer) Label() string {
	return answerLabels[a]
}

func (a Answer) String() string {
	if a == Unset {
		return "UNSET"
	}
	return a.Code()
}

// MarshalText lets answers travel as their codes in JSON.
func (a Answer) MarshalText() ([]byte, error) {
	return []byte(a.Code()), nil
}

func (a *Answer) UnmarshalText(text []byte) error {
	parsed, err := ParseAnswer(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
