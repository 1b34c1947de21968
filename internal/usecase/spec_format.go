package usecase

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// unitRule pairs raw-key substrings with the unit appended to numeric
// values. Rules are checked in order and the first hit wins: the percent
// rule must stay ahead of the dimension rule ("entladetiefe" would
// otherwise read as a depth in cm), and "_kwh" must stay ahead of the
// bare-suffix guard ("_wh" is contained in "_kwh").
type unitRule struct {
	substrings []string
	unit       string
}

var unitRules = []unitRule{
	{[]string{"wirkungsgrad", "entladetiefe", "dod", "prozent"}, "%"},
	{[]string{"_kwh"}, "kWh"},
	// suffixes that name their own display unit keep the bare value; the
	// label carries the unit there
	{[]string{"_ah", "_wp", "_wh", "_m"}, ""},
	{[]string{"kapazitaet"}, "kWh"},
	{[]string{"spannung"}, "V"},
	{[]string{"leistung"}, "W"},
	{[]string{"strom"}, "A"},
	{[]string{"gewicht", "masse"}, "kg"},
	{[]string{"laenge", "breite", "hoehe", "tiefe", "durchmesser"}, "cm"},
	{[]string{"frequenz", "_hz"}, "Hz"},
}

// inferUnit returns the display unit for a numeric value under the given
// raw payload key, or "" when none applies.
func inferUnit(rawKey string) string {
	key := strings.ToLower(rawKey)
	for _, rule := range unitRules {
		for _, sub := range rule.substrings {
			if strings.Contains(key, sub) {
				return rule.unit
			}
		}
	}
	return ""
}

// deriveLabel builds a display label for keys the category tables do not
// know: separators become spaces, internal capitals get a space in front,
// and the first letter is capitalized.
func deriveLabel(rawKey string) string {
	spaced := strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(rawKey)

	var b strings.Builder
	var prev rune
	for i, r := range spaced {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}

	words := strings.Fields(b.String())
	if len(words) == 0 {
		return ""
	}
	label := strings.Join(words, " ")
	runes := []rune(label)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// formatSpecValue renders one payload value for display. The second return
// is false when the value is absent, empty, or not representable.
func formatSpecValue(rawKey string, value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case bool:
		return boolWord(v), true
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case []any:
		return joinSequence(v)
	case []string:
		anys := make([]any, len(v))
		for i, s := range v {
			anys[i] = s
		}
		return joinSequence(anys)
	case map[string]any:
		if strings.Contains(strings.ToLower(rawKey), "zyklen") {
			return formatCycleLife(v)
		}
		return flattenMapping(v)
	default:
		if f, ok := toNumber(value); ok {
			return withUnit(rawKey, formatNumber(f)), true
		}
		return "", false
	}
}

// flattenMapping renders a nested specification block as "SubLabel: value"
// fragments joined with ", ". Boolean and unit rules apply one level deep;
// deeper nesting is skipped.
func flattenMapping(m map[string]any) (string, bool) {
	var parts []string
	for _, key := range sortedKeys(m) {
		s, ok := formatScalar(key, m[key])
		if !ok {
			continue
		}
		parts = append(parts, deriveLabel(key)+": "+s)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}

// formatCycleLife renders a cycle-life mapping as "threshold - value"
// pairs, e.g. {"80% DoD": 6000} becomes "80% DoD - 6000".
func formatCycleLife(m map[string]any) (string, bool) {
	var parts []string
	for _, key := range sortedKeys(m) {
		s, ok := scalarWord(m[key])
		if !ok {
			continue
		}
		parts = append(parts, strings.TrimSpace(key)+" - "+s)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}

// formatScalar renders a scalar or sequence value with unit inference for
// numbers. Nested mappings report false.
func formatScalar(rawKey string, value any) (string, bool) {
	switch v := value.(type) {
	case bool:
		return boolWord(v), true
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case []any:
		return joinSequence(v)
	case map[string]any:
		return "", false
	default:
		if f, ok := toNumber(value); ok {
			return withUnit(rawKey, formatNumber(f)), true
		}
		return "", false
	}
}

// joinSequence joins sequence elements with ", ". Elements keep their
// plain scalar rendering; unit inference does not apply inside lists.
func joinSequence(seq []any) (string, bool) {
	var parts []string
	for _, el := range seq {
		if s, ok := scalarWord(el); ok {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}

// scalarWord renders a bare scalar without any unit suffix.
func scalarWord(value any) (string, bool) {
	switch v := value.(type) {
	case bool:
		return boolWord(v), true
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	default:
		if f, ok := toNumber(value); ok {
			return formatNumber(f), true
		}
		return "", false
	}
}

func withUnit(rawKey, number string) string {
	if unit := inferUnit(rawKey); unit != "" {
		return number + " " + unit
	}
	return number
}

func boolWord(b bool) string {
	if b {
		return "Ja"
	}
	return "Nein"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// sortedKeys returns the map keys in sorted order so extraction output is
// deterministic regardless of map iteration order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
