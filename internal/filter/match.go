package filter

import (
	"regexp"
	"strings"

	"github.com/obadir/obad/internal/ldaperr"
)

// Match evaluates f against e. Approx and Extensible fail with
// UnavailableCriticalExtension, grounded on Filter::match in the original
// program's filter.cpp which throws for exactly those two types.
func Match(f *Filter, e Entry) (bool, error) {
	switch f.Type {
	case And:
		for _, c := range f.Children {
			ok, err := Match(c, e)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case Or:
		for _, c := range f.Children {
			ok, err := Match(c, e)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case Not:
		ok, err := Match(f.Child, e)
		if err != nil {
			return false, err
		}
		return !ok, nil

	case Present:
		_, ok := e.Get(f.Attribute)
		return ok, nil

	case Equal, Gte, Lte:
		values, ok := e.Get(f.Attribute)
		if !ok {
			return false, nil
		}
		for _, v := range values {
			switch f.Type {
			case Equal:
				if v == f.Value {
					return true, nil
				}
			case Gte:
				if f.Value <= v {
					return true, nil
				}
			case Lte:
				if v <= f.Value {
					return true, nil
				}
			}
		}
		return false, nil

	case Substring:
		values, ok := e.Get(f.Attribute)
		if !ok {
			return false, nil
		}
		re, err := substringRegexp(f.Parts)
		if err != nil {
			return false, err
		}
		for _, v := range values {
			if re.MatchString(v) {
				return true, nil
			}
		}
		return false, nil

	case Approx, Extensible:
		return false, ldaperr.New(ldaperr.UnavailableCriticalExtension, "filter type not supported")

	default:
		return false, nil
	}
}

// substringRegexp builds "^lit" for Initial, ".+lit" for Any, ".+lit$" for
// Final, per spec.md §4.3.
func substringRegexp(parts []SubPart) (*regexp.Regexp, error) {
	var sb strings.Builder
	for _, p := range parts {
		switch p.Kind {
		case Initial:
			sb.WriteByte('^')
			sb.WriteString(p.Literal)
		case Any:
			sb.WriteString(".+")
			sb.WriteString(p.Literal)
		case Final:
			sb.WriteString(".+")
			sb.WriteString(p.Literal)
			sb.WriteByte('$')
		}
	}
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, ldaperr.Wrap(ldaperr.ProtocolError, "invalid substring pattern", err)
	}
	return re, nil
}
