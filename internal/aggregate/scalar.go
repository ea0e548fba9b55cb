package aggregate

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mvp-joe/project-pivot/internal/model"
)

// Kind selects how a leaf list reduces to one scalar.
type Kind string

const (
	KindNone Kind = "none"
	KindSum  Kind = "sum"
	KindAvg  Kind = "avg"
	KindMin  Kind = "min"
	KindMax  Kind = "max"
)

// ErrUnknownKind is returned by ParseKind for unsupported aggregation names.
var ErrUnknownKind = errors.New("unknown aggregation kind")

// ParseKind maps a user-facing name to a Kind. The empty string means KindNone.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "first":
		return KindNone, nil
	case "sum":
		return KindSum, nil
	case "avg", "average", "mean":
		return KindAvg, nil
	case "min":
		return KindMin, nil
	case "max":
		return KindMax, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Scalar reduces a leaf list. An empty list yields nil, a single element is
// returned verbatim. Sum and Avg count only numeric values and use decimal
// arithmetic; Min and Max order the list and pick the first or last element.
func Scalar(values []any, kind Kind) any {
	if len(values) == 0 {
		return nil
	}
	if len(values) == 1 {
		return values[0]
	}

	switch kind {
	case KindSum:
		sum, n := decimalSum(values)
		if n == 0 {
			return nil
		}
		f, _ := sum.Float64()
		return f
	case KindAvg:
		sum, n := decimalSum(values)
		if n == 0 {
			return nil
		}
		f, _ := sum.Div(decimal.NewFromInt(int64(n))).Float64()
		return f
	case KindMin:
		sorted := sortLoose(values)
		return sorted[0]
	case KindMax:
		sorted := sortLoose(values)
		return sorted[len(sorted)-1]
	default:
		return values[0]
	}
}

func decimalSum(values []any) (decimal.Decimal, int) {
	sum := decimal.Zero
	n := 0
	for _, v := range values {
		d, ok := toDecimal(v)
		if !ok {
			continue
		}
		sum = sum.Add(d)
		n++
	}
	return sum, n
}

// toDecimal accepts Go numbers and numeric strings. Bools are not numeric.
func toDecimal(v any) (decimal.Decimal, bool) {
	if s, ok := v.(string); ok {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		return d, err == nil
	}
	f, ok := model.ToFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

func sortLoose(values []any) []any {
	sorted := slices.Clone(values)
	slices.SortStableFunc(sorted, compareLoose)
	return sorted
}

// compareLoose orders numbers numerically and strings lexically. A number and
// a numeric string compare as numbers; every other mixed pair is unordered.
func compareLoose(a, b any) int {
	sa, aStr := a.(string)
	sb, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(sa, sb)
	}

	fa, aNum := numberLike(a)
	fb, bNum := numberLike(b)
	switch {
	case aNum && bNum:
	case aNum && bStr:
		f, err := strconv.ParseFloat(strings.TrimSpace(sb), 64)
		if err != nil {
			return 0
		}
		fb = f
	case aStr && bNum:
		f, err := strconv.ParseFloat(strings.TrimSpace(sa), 64)
		if err != nil {
			return 0
		}
		fa = f
	default:
		return 0
	}

	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}
	return 0
}

func numberLike(v any) (float64, bool) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	if _, ok := v.(string); ok {
		return 0, false
	}
	return model.ToFloat(v)
}
