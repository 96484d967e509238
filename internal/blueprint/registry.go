package blueprint

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

type key struct {
	section Section
	part    int
}

// Registry is an immutable lookup table of exam blueprints. It is safe for
// concurrent use once constructed.
type Registry struct {
	entries    map[key]Blueprint
	timeLimits map[Section]int
}

// New builds a Registry from the given blueprints and section time limits
// (minutes). It rejects duplicate (section, part) pairs and blueprints whose
// counts, labels, or points are inconsistent with their option type.
func New(timeLimits map[Section]int, bps ...Blueprint) (*Registry, error) {
	r := &Registry{
		entries:    make(map[key]Blueprint, len(bps)),
		timeLimits: make(map[Section]int, len(timeLimits)),
	}
	for s, m := range timeLimits {
		r.timeLimits[s] = m
	}
	for _, bp := range bps {
		if err := check(bp); err != nil {
			return nil, fmt.Errorf("blueprint %s: %w", bp.Key(), err)
		}
		k := key{bp.Section, bp.Part}
		if _, dup := r.entries[k]; dup {
			return nil, fmt.Errorf("blueprint %s: duplicate entry", bp.Key())
		}
		bp.canonicalLabels = append([]string(nil), bp.canonicalLabels...)
		if len(bp.canonicalLabels) == 0 {
			bp.canonicalLabels = nil
		}
		r.entries[k] = bp
	}
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(timeLimits map[Section]int, bps ...Blueprint) *Registry {
	r, err := New(timeLimits, bps...)
	if err != nil {
		panic(err)
	}
	return r
}

func check(bp Blueprint) error {
	if bp.Part < 1 {
		return fmt.Errorf("part must be >= 1")
	}
	if bp.OptionType.HasFixedLabels() && len(bp.canonicalLabels) == 0 {
		return fmt.Errorf("%s requires canonical labels", bp.OptionType)
	}
	if !bp.OptionType.HasFixedLabels() && len(bp.canonicalLabels) != 0 {
		return fmt.Errorf("%s must not define canonical labels", bp.OptionType)
	}
	if !bp.OptionType.HasQuestions() {
		if bp.QuestionCount != 0 {
			return fmt.Errorf("%s parts have no questions", bp.OptionType)
		}
		return nil
	}
	if bp.QuestionCount < 1 {
		return fmt.Errorf("question count must be >= 1")
	}
	if math.Abs(float64(bp.QuestionCount)*bp.PointsPerQuestion-bp.MaxPoints) > 1e-9 {
		return fmt.Errorf("max points %.2f != %d x %.2f", bp.MaxPoints, bp.QuestionCount, bp.PointsPerQuestion)
	}
	return nil
}

// Lookup returns the blueprint for (section, part).
func (r *Registry) Lookup(section Section, part int) (Blueprint, bool) {
	bp, ok := r.entries[key{section, part}]
	return bp, ok
}

// Parts returns the blueprints of one section ordered by part number.
func (r *Registry) Parts(section Section) []Blueprint {
	var out []Blueprint
	for k, bp := range r.entries {
		if k.section == section {
			out = append(out, bp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Part < out[j].Part })
	return out
}

// Sections returns the sections present in the registry in exam order.
func (r *Registry) Sections() []Section {
	var out []Section
	for _, s := range sectionOrder {
		if len(r.Parts(s)) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// All returns every blueprint, ordered by section then part.
func (r *Registry) All() []Blueprint {
	var out []Blueprint
	for _, s := range r.Sections() {
		out = append(out, r.Parts(s)...)
	}
	return out
}

// TimeLimit returns the time allowed for a section in minutes, or 0.
func (r *Registry) TimeLimit(section Section) int {
	return r.timeLimits[section]
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return MustNew(defaultTimeLimits(), defaultBlueprints()...)
})

// Default returns the registry describing the supported exam.
func Default() *Registry {
	return defaultRegistry()
}
