package examgen

import (
	"github.com/abhisek/examiz/internal/blueprint"
	"github.com/abhisek/examiz/internal/llm"
)

// CheckConformance validates a parsed payload against the exact shape bp
// asks for. A violation is drift evidence only; Repair still produces
// valid content. An ExamContent envelope is checked by its first part,
// the same part Repair reads.
func CheckConformance(bp blueprint.Blueprint, p *Payload) error {
	return llm.ValidateResponse(conformanceSchema(bp), []byte(p.root.Raw))
}
