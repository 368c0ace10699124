// Package soap splits a model reply into the four SOAP note sections.
package soap

// Section is the state of the splitter scan. None is the state before any
// heading has been seen.
type Section int

const (
	None Section = iota
	Subjective
	Objective
	Assessment
	Plan
)

// Sections lists the four note sections in document order.
var Sections = []Section{Subjective, Objective, Assessment, Plan}

// Key is the stable identifier of the section ("subjective", ...).
func (s Section) Key() string {
	switch s {
	case Subjective:
		return "subjective"
	case Objective:
		return "objective"
	case Assessment:
		return "assessment"
	case Plan:
		return "plan"
	default:
		return "none"
	}
}

// Label is the Portuguese heading used in rendered output.
func (s Section) Label() string {
	switch s {
	case Subjective:
		return "SUBJETIVO"
	case Objective:
		return "OBJETIVO"
	case Assessment:
		return "AVALIAÇÃO"
	case Plan:
		return "PLANO"
	default:
		return ""
	}
}

// Description is the short explanation shown next to the label.
func (s Section) Description() string {
	switch s {
	case Subjective:
		return "Sintomas e queixas relatadas pelo paciente"
	case Objective:
		return "Sinais vitais, exame físico e observações"
	case Assessment:
		return "Hipótese diagnóstica e raciocínio clínico"
	case Plan:
		return "Tratamento, medicações e orientações"
	default:
		return ""
	}
}

func (s Section) String() string { return s.Key() }

// Note holds the trimmed text of each section, lines joined by "\n".
type Note struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

// Get returns the text of s; None yields "".
func (n Note) Get(s Section) string {
	switch s {
	case Subjective:
		return n.Subjective
	case Objective:
		return n.Objective
	case Assessment:
		return n.Assessment
	case Plan:
		return n.Plan
	default:
		return ""
	}
}

// IsEmpty reports whether no section received any content.
func (n Note) IsEmpty() bool {
	return n.Subjective == "" && n.Objective == "" && n.Assessment == "" && n.Plan == ""
}

func (n *Note) field(s Section) *string {
	switch s {
	case Subjective:
		return &n.Subjective
	case Objective:
		return &n.Objective
	case Assessment:
		return &n.Assessment
	case Plan:
		return &n.Plan
	default:
		return nil
	}
}
