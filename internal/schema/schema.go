// Package schema declares the shape of the property graph the generator is
// allowed to target: which labels exist and which relationship types connect
// them in which direction.
package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Direction of a relationship relative to the source label.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
	Undirected
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "out"
	case Incoming:
		return "in"
	case Undirected:
		return "both"
	default:
		return "unknown"
	}
}

// ParseDirection accepts "out", "in" and "both". Empty means "out".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "out", "outgoing":
		return Outgoing, nil
	case "in", "incoming":
		return Incoming, nil
	case "both", "undirected":
		return Undirected, nil
	default:
		return Outgoing, fmt.Errorf("unknown relationship direction %q", s)
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Triple is one allowed (source)-[relationship]-(target) pattern.
type Triple struct {
	Source       string    `json:"source"`
	Relationship string    `json:"relationship"`
	Target       string    `json:"target"`
	Direction    Direction `json:"direction"`
}

// Pattern renders the triple the way it appears in prompts,
// e.g. (:Gene)-[:ASSOCIATED_WITH]->(:Disease).
func (t Triple) Pattern() string {
	rel := "[:" + t.Relationship + "]"
	switch t.Direction {
	case Incoming:
		return fmt.Sprintf("(:%s)<-%s-(:%s)", t.Source, rel, t.Target)
	case Undirected:
		return fmt.Sprintf("(:%s)-%s-(:%s)", t.Source, rel, t.Target)
	default:
		return fmt.Sprintf("(:%s)-%s->(:%s)", t.Source, rel, t.Target)
	}
}

func (t Triple) validate() error {
	for _, name := range []string{t.Source, t.Relationship, t.Target} {
		if !identifierPattern.MatchString(name) {
			return fmt.Errorf("invalid identifier %q in triple %s", name, t.Pattern())
		}
	}
	return nil
}

// Descriptor is an immutable, ordered set of triples.
type Descriptor struct {
	triples []Triple
	labels  []string
	rels    []string
}

// New validates the triples and returns a Descriptor that keeps their order.
// Duplicate triples are rejected.
func New(triples ...Triple) (*Descriptor, error) {
	if len(triples) == 0 {
		return nil, fmt.Errorf("schema must declare at least one triple")
	}

	d := &Descriptor{triples: make([]Triple, 0, len(triples))}
	seenTriple := make(map[Triple]bool)
	seenLabel := make(map[string]bool)
	seenRel := make(map[string]bool)

	for _, t := range triples {
		if err := t.validate(); err != nil {
			return nil, err
		}
		if seenTriple[t] {
			return nil, fmt.Errorf("duplicate triple %s", t.Pattern())
		}
		seenTriple[t] = true
		d.triples = append(d.triples, t)

		for _, label := range []string{t.Source, t.Target} {
			if !seenLabel[label] {
				seenLabel[label] = true
				d.labels = append(d.labels, label)
			}
		}
		if !seenRel[t.Relationship] {
			seenRel[t.Relationship] = true
			d.rels = append(d.rels, t.Relationship)
		}
	}

	return d, nil
}

// Triples returns a copy of the declared triples in declaration order.
func (d *Descriptor) Triples() []Triple {
	out := make([]Triple, len(d.triples))
	copy(out, d.triples)
	return out
}

func (d *Descriptor) Len() int {
	return len(d.triples)
}

// Labels returns every node label in first-seen order.
func (d *Descriptor) Labels() []string {
	out := make([]string, len(d.labels))
	copy(out, d.labels)
	return out
}

// RelationshipTypes returns every relationship type in first-seen order.
func (d *Descriptor) RelationshipTypes() []string {
	out := make([]string, len(d.rels))
	copy(out, d.rels)
	return out
}

func (d *Descriptor) HasLabel(label string) bool {
	for _, l := range d.labels {
		if l == label {
			return true
		}
	}
	return false
}

func (d *Descriptor) HasRelationship(relType string) bool {
	for _, r := range d.rels {
		if r == relType {
			return true
		}
	}
	return false
}

// Example is a few-shot (question, query) pair.
type Example struct {
	Question string `json:"question"`
	Query    string `json:"query"`
}
