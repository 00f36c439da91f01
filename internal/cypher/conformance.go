package cypher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sozercan/cypherchat/internal/schema"
)

// References lists the node labels and relationship types a query mentions
// inside node and relationship patterns, in order of appearance.
// Label predicates in WHERE clauses are not patterns and are not reported.
func References(query string) (labels, relTypes []string, err error) {
	tokens, err := tokenize(strings.TrimSpace(query))
	if err != nil {
		return nil, nil, err
	}
	labels, relTypes = references(tokens)
	return labels, relTypes, nil
}

func references(tokens []token) (labels, relTypes []string) {
	var stack []string

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.kind == tokPunct {
			switch t.text {
			case "(", "{":
				stack = append(stack, t.text)
				continue
			case "[":
				// Only -[ opens a relationship pattern; any other [ is a
				// list, subscript or comprehension.
				if i > 0 && tokens[i-1].isPunct("-") {
					stack = append(stack, "[")
				} else {
					stack = append(stack, "list")
				}
				continue
			case ")", "]", "}":
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				continue
			}
		}

		if !t.isPunct(":") || len(stack) == 0 || i+1 >= len(tokens) || !isName(tokens[i+1]) {
			continue
		}

		switch stack[len(stack)-1] {
		case "(":
			labels = append(labels, nameOf(tokens[i+1]))
			i++
		case "[":
			relTypes = append(relTypes, nameOf(tokens[i+1]))
			i++
			// [:A|B] and the older [:A|:B]
			for i+2 < len(tokens) && tokens[i+1].isPunct("|") {
				k := i + 2
				if tokens[k].isPunct(":") {
					k++
				}
				if k >= len(tokens) || !isName(tokens[k]) {
					break
				}
				relTypes = append(relTypes, nameOf(tokens[k]))
				i = k
			}
		}
	}
	return labels, relTypes
}

func isName(t token) bool {
	return t.kind == tokWord || t.kind == tokQuotedIdent
}

func nameOf(t token) string {
	if t.kind == tokQuotedIdent {
		inner := t.text[1 : len(t.text)-1]
		return strings.ReplaceAll(inner, "``", "`")
	}
	return t.text
}

func conforms(tokens []token, d *schema.Descriptor) error {
	labels, relTypes := references(tokens)
	for _, l := range labels {
		if !d.HasLabel(l) {
			return fmt.Errorf("label %q is not in the schema", l)
		}
	}
	for _, r := range relTypes {
		if !d.HasRelationship(r) {
			return fmt.Errorf("relationship type %q is not in the schema", r)
		}
	}
	return nil
}

// CheckExamples verifies that every label and relationship type used by the
// few-shot examples is declared by the descriptor. It is meant to run once
// at start-up.
func CheckExamples(d *schema.Descriptor, examples []schema.Example) error {
	var errs []error
	for i, ex := range examples {
		tokens, err := tokenize(strings.TrimSpace(ex.Query))
		if err != nil {
			errs = append(errs, fmt.Errorf("example %d (%q): %w", i, ex.Question, err))
			continue
		}
		if err := conforms(tokens, d); err != nil {
			errs = append(errs, fmt.Errorf("example %d (%q): %w", i, ex.Question, err))
		}
	}
	return errors.Join(errs...)
}
