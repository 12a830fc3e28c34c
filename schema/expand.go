package schema

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocales is the locale set used when the configuration does not
// override it. The first entry is the default locale.
var DefaultLocales = []string{"ru", "en", "cn"}

// ValidateLocales checks that every locale is a well-formed language tag.
// Unregistered but well-formed tags are accepted.
func ValidateLocales(locales []string) error {
	for _, l := range locales {
		if _, err := language.Parse(l); err != nil {
			var verr language.ValueError
			if errors.As(err, &verr) {
				continue
			}
			return fmt.Errorf("locale %q: %w", l, ErrUnknownLocale)
		}
	}
	return nil
}

// Expand fans a ColumnSpec out into physical columns. A plain column maps to
// itself. A multilingual column produces one column per locale, named
// <base>_<locale>; only the default locale (first in the set) inherits the
// unique and not-null flags, secondary locales are nullable.
func Expand(spec ColumnSpec, locales []string) []PhysicalColumn {
	if !spec.Multilingual {
		return []PhysicalColumn{{
			Name:       spec.Name,
			Type:       spec.Type,
			PrimaryKey: spec.PrimaryKey,
			Unique:     spec.Unique,
			NotNull:    spec.NotNull,
		}}
	}

	columns := make([]PhysicalColumn, 0, len(locales))
	for i, locale := range locales {
		pc := PhysicalColumn{
			Name: spec.Name + "_" + locale,
			Type: spec.Type,
		}
		if i == 0 {
			pc.Unique = spec.Unique
			pc.NotNull = spec.NotNull
		}
		columns = append(columns, pc)
	}
	return columns
}

// ResolveColumn maps a caller-facing column name to a physical column name.
// A multilingual base name resolves to its default-locale column; an explicit
// <base>_<locale> form is validated against the configured locales.
func (t *Table) ResolveColumn(name string) (string, error) {
	if t.logical[name] {
		return name + "_" + t.locales[0], nil
	}
	if _, ok := t.physical[name]; ok {
		return name, nil
	}
	if base, locale, ok := t.splitLocaleSuffix(name); ok {
		if !t.hasLocale(locale) {
			return "", fmt.Errorf("column %q: locale %q: %w", base, locale, ErrUnknownLocale)
		}
		return name, nil
	}
	return "", fmt.Errorf("table %s: column %q: %w", t.Name, name, ErrInvalidColumn)
}

// ResolveWriteKey maps a mutation mapping key to a physical column name.
// Same rules as ResolveColumn; kept separate because write routing is the
// only place locale-suffixed keys arrive from callers.
func (t *Table) ResolveWriteKey(key string) (string, error) {
	return t.ResolveColumn(key)
}

// splitLocaleSuffix splits name into a multilingual base and its suffix.
// Returns ok=false when the prefix is not a declared multilingual column.
func (t *Table) splitLocaleSuffix(name string) (base, locale string, ok bool) {
	idx := strings.LastIndex(name, "_")
	if idx <= 0 || idx == len(name)-1 {
		return "", "", false
	}
	base, locale = name[:idx], name[idx+1:]
	if !t.logical[base] {
		return "", "", false
	}
	return base, locale, true
}

func (t *Table) hasLocale(locale string) bool {
	for _, l := range t.locales {
		if l == locale {
			return true
		}
	}
	return false
}
