// Package decimal converts between float64 prices and DynamoDB's exact
// decimal number representation. Numbers round-trip through their shortest
// text form so the stored value carries no binary floating point artifacts.
package decimal

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// FromFloat renders v as an exact decimal attribute value.
func FromFloat(v float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(v, 'f', -1, 64)}
}

// ToFloat parses a DynamoDB number attribute. The second return value is
// false when av is not a parseable number.
func ToFloat(av types.AttributeValue) (float64, bool) {
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Normalize converts an attribute value tree into plain Go values,
// replacing every number leaf with a float64 at any nesting depth.
// Non-number leaves keep their native representation.
func Normalize(av types.AttributeValue) any {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		f, _ := strconv.ParseFloat(v.Value, 64)
		return f
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberBOOL:
		return v.Value
	case *types.AttributeValueMemberNULL:
		return nil
	case *types.AttributeValueMemberB:
		return v.Value
	case *types.AttributeValueMemberM:
		return NormalizeMap(v.Value)
	case *types.AttributeValueMemberL:
		out := make([]any, 0, len(v.Value))
		for _, el := range v.Value {
			out = append(out, Normalize(el))
		}
		return out
	case *types.AttributeValueMemberSS:
		out := make([]any, 0, len(v.Value))
		for _, s := range v.Value {
			out = append(out, s)
		}
		return out
	case *types.AttributeValueMemberNS:
		out := make([]any, 0, len(v.Value))
		for _, s := range v.Value {
			f, _ := strconv.ParseFloat(s, 64)
			out = append(out, f)
		}
		return out
	default:
		return av
	}
}

// NormalizeMap applies Normalize to every value of an attribute map.
func NormalizeMap(m map[string]types.AttributeValue) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}
