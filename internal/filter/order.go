package filter

// Less defines a total, lexicographic order over filters, used to
// stable-sort the children of parsed And/Or/Not combiners so that
// equivalent text filters parse to identical trees, which the access
// policy's Equal_ comparison of filters relies on.
// The original program's operator< combines independent field
// comparisons with && instead of comparing lexicographically -- a bug
// spec.md §9 flags explicitly and asks this rewrite to fix rather than
// reproduce.
func Less(a, b *Filter) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}

	switch a.Type {
	case And, Or:
		return lessChildren(a.Children, b.Children)
	case Not:
		return Less(a.Child, b.Child)
	case Equal, Gte, Lte, Approx:
		if a.Attribute != b.Attribute {
			return a.Attribute < b.Attribute
		}
		return a.Value < b.Value
	case Substring:
		if a.Attribute != b.Attribute {
			return a.Attribute < b.Attribute
		}
		return lessParts(a.Parts, b.Parts)
	case Present:
		return a.Attribute < b.Attribute
	default:
		return false
	}
}

func lessChildren(a, b []*Filter) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if Equal_(a[i], b[i]) {
			continue
		}
		return Less(a[i], b[i])
	}
	return len(a) < len(b)
}

func lessParts(a, b []SubPart) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Kind != b[i].Kind {
			return a[i].Kind < b[i].Kind
		}
		if a[i].Literal != b[i].Literal {
			return a[i].Literal < b[i].Literal
		}
	}
	return len(a) < len(b)
}

// Equal_ reports structural equality between two filters. Named with a
// trailing underscore to avoid colliding with the Equal filter Type
// constant in this package.
func Equal_(a, b *Filter) bool {
	if a.Type != b.Type {
		return false
	}

	switch a.Type {
	case And, Or:
		if len(a.Children) != len(b.Children) {
			return false
		}
		for i := range a.Children {
			if !Equal_(a.Children[i], b.Children[i]) {
				return false
			}
		}
		return true
	case Not:
		return Equal_(a.Child, b.Child)
	case Equal, Gte, Lte, Approx:
		return a.Attribute == b.Attribute && a.Value == b.Value
	case Substring:
		if a.Attribute != b.Attribute || len(a.Parts) != len(b.Parts) {
			return false
		}
		for i := range a.Parts {
			if a.Parts[i] != b.Parts[i] {
				return false
			}
		}
		return true
	case Present:
		return a.Attribute == b.Attribute
	default:
		return false
	}
}
