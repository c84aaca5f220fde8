package model

import "strconv"

// Style selects how an answer should be phrased. The zero value means
// "no styling" and leaves text untouched.
type Style int

const (
	StyleNone Style = iota
	StyleShort
	StyleDetailed
	StyleSteps
	StyleSimple
	StyleTechnical
)

var allStyles = []Style{StyleShort, StyleDetailed, StyleSteps, StyleSimple, StyleTechnical}

// AllStyles returns the known styles in menu order.
func AllStyles() []Style {
	out := make([]Style, len(allStyles))
	copy(out, allStyles)
	return out
}

// ParseStyle resolves a menu code such as "2". Only the single-digit codes of
// the declared styles are accepted.
func ParseStyle(code string) (Style, bool) {
	if len(code) != 1 || code[0] < '1' || code[0] > '9' {
		return StyleNone, false
	}
	s := Style(code[0] - '0')
	if s < StyleShort || s > StyleTechnical {
		return StyleNone, false
	}
	return s, true
}

// Valid reports whether s is one of the declared styles.
func (s Style) Valid() bool { return s >= StyleShort && s <= StyleTechnical }

// Code is the digit a user replies with to pick s.
func (s Style) Code() string {
	if !s.Valid() {
		return ""
	}
	return strconv.Itoa(int(s))
}

func (s Style) Label() string {
	switch s {
	case StyleShort:
		return "🔹 Short answer (1-2 sentences)"
	case StyleDetailed:
		return "📝 Detailed explanation"
	case StyleSteps:
		return "🔄 Step-by-step guide"
	case StyleSimple:
		return "👶 Layman's terms"
	case StyleTechnical:
		return "⚙️ Technical explanation"
	default:
		return ""
	}
}

func (s Style) Instruction() string {
	switch s {
	case StyleShort:
		return "Respond concisely in 1-2 sentences."
	case StyleDetailed:
		return "Provide a detailed explanation with examples."
	case StyleSteps:
		return "Break it down into clear, numbered steps."
	case StyleSimple:
		return "Explain like I'm five years old."
	case StyleTechnical:
		return "Include technical specifications and detail."
	default:
		return ""
	}
}

// Apply prepends the style instruction to text, separated by a blank line.
func (s Style) Apply(text string) string {
	ins := s.Instruction()
	if ins == "" {
		return text
	}
	return ins + "\n\n" + text
}

func (s Style) String() string {
	switch s {
	case StyleShort:
		return "short"
	case StyleDetailed:
		return "detailed"
	case StyleSteps:
		return "steps"
	case StyleSimple:
		return "simple"
	case StyleTechnical:
		return "technical"
	default:
		return "none"
	}
}

// InstructionFor returns the instruction for a menu code, or "" when unknown.
func InstructionFor(code string) string {
	s, _ := ParseStyle(code)
	return s.Instruction()
}

// LabelFor returns the menu label for a code, or "" when unknown.
func LabelFor(code string) string {
	s, _ := ParseStyle(code)
	return s.Label()
}
