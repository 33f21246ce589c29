package naming

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/jmreicha/ssoprofile/internal/prompt"
)

const retryQuestion = "Profile name (leave empty to skip)"

// NameSet holds profile names that are already taken.
type NameSet map[string]struct{}

// NewNameSet creates a set containing names.
func NewNameSet(names ...string) NameSet {
	set := make(NameSet, len(names))
	for _, name := range names {
		set.Add(name)
	}
	return set
}

// Has reports whether name is taken.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Add marks name as taken.
func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

// Sorted returns the names in lexical order.
func (s NameSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sanitize keeps only ASCII letters, digits and '-'.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Candidate joins the sanitized account name and the role name.
func Candidate(safeName, roleName string) string {
	return safeName + roleName
}

// Resolver turns a candidate into a unique profile name.
type Resolver struct {
	// Interactive lets the operator accept, rename or skip.
	Interactive bool

	// Prompter is required when Interactive is set.
	Prompter prompt.Prompter

	// Notify receives operator-facing messages. Optional.
	Notify func(msg string)
}

// Resolve returns the final profile name and true, or false when the role
// should be skipped. An accepted name is added to used before returning.
func (r *Resolver) Resolve(ctx context.Context, candidate string, used NameSet) (string, bool, error) {
	if !r.Interactive {
		if candidate == "" || used.Has(candidate) {
			return "", false, nil
		}
		used.Add(candidate)
		return candidate, true, nil
	}

	if r.Prompter == nil {
		return "", false, fmt.Errorf("interactive naming requires a prompter")
	}

	question, def := "Profile name", candidate
	for {
		answer, err := r.Prompter.Ask(ctx, question, def)
		if err != nil {
			return "", false, err
		}

		name := strings.TrimSpace(answer)
		switch {
		case name == "":
			return "", false, nil
		case !validProfileName(name):
			r.notify(fmt.Sprintf("profile name %q must not contain whitespace or brackets", name))
		case used.Has(name):
			r.notify(fmt.Sprintf("profile %q already exists", name))
		default:
			used.Add(name)
			return name, true, nil
		}

		question, def = retryQuestion, ""
	}
}

func (r *Resolver) notify(msg string) {
	if r.Notify != nil {
		r.Notify(msg)
	}
}

func validProfileName(name string) bool {
	for _, c := range name {
		if unicode.IsSpace(c) || c == '[' || c == ']' {
			return false
		}
	}
	return true
}
