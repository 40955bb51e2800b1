package user

import "strings"

// Kind identifies the condition a Predicate applies.
type Kind int

const (
	KindUsernameContains Kind = iota + 1
	KindEmailEquals
	KindRoleNameEquals
)

func (k Kind) String() string {
	switch k {
	case KindUsernameContains:
		return "username_contains"
	case KindEmailEquals:
		return "email_equals"
	case KindRoleNameEquals:
		return "role_name_equals"
	}
	return "unknown"
}

// Predicate is a single optional search condition.
// FanOut is set when the condition traverses a one-to-many relation,
// so one user can match through more than one joined row.
type Predicate struct {
	Kind   Kind
	Value  string
	FanOut bool
}

// UsernameContains matches users whose username contains text, ignoring case.
// A blank text yields no predicate.
func UsernameContains(text string) *Predicate {
	return newPredicate(KindUsernameContains, text, false)
}

// HasEmail matches users whose email equals email, ignoring case.
// A blank email yields no predicate.
func HasEmail(email string) *Predicate {
	return newPredicate(KindEmailEquals, email, false)
}

// HasRole matches users holding at least one role named name, ignoring case.
// A blank name yields no predicate.
func HasRole(name string) *Predicate {
	return newPredicate(KindRoleNameEquals, name, true)
}

// newPredicate keeps value as given; surrounding spaces are part of the search.
func newPredicate(kind Kind, value string, fanOut bool) *Predicate {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &Predicate{Kind: kind, Value: value, FanOut: fanOut}
}

// Filter is the conjunction of zero or more predicates.
// An empty Filter matches every user.
type Filter struct {
	Predicates       []Predicate
	RequiresDistinct bool
}

// Compose ANDs the given predicates, skipping nil entries.
func Compose(preds ...*Predicate) Filter {
	var f Filter
	for _, p := range preds {
		if p == nil {
			continue
		}
		f.Predicates = append(f.Predicates, *p)
		if p.FanOut {
			f.RequiresDistinct = true
		}
	}
	return f
}

// And returns the conjunction of f and other.
func (f Filter) And(other Filter) Filter {
	preds := make([]*Predicate, 0, len(f.Predicates)+len(other.Predicates))
	for i := range f.Predicates {
		preds = append(preds, &f.Predicates[i])
	}
	for i := range other.Predicates {
		preds = append(preds, &other.Predicates[i])
	}
	return Compose(preds...)
}

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool {
	return len(f.Predicates) == 0
}

// Criteria bundles the optional search fields accepted when listing users.
type Criteria struct {
	UsernameContains string
	EmailEquals      string
	RoleNameEquals   string
}

// Filter builds the composed filter for c.
func (c Criteria) Filter() Filter {
	return Compose(
		UsernameContains(c.UsernameContains),
		HasEmail(c.EmailEquals),
		HasRole(c.RoleNameEquals),
	)
}

// fold lowercases s so comparisons line up with Postgres lower().
func fold(s string) string {
	return strings.ToLower(s)
}
