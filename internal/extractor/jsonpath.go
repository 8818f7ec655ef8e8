package extractor

import (
	"github.com/tidwall/gjson"
)

// Kind discriminates the closed set of extracted value variants.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindOther
)

// Value is an extracted JSON value. Exactly one representation is populated
// according to Kind; Other carries the raw JSON text of composite values.
type Value struct {
	Kind Kind
	Str  string
	Num  string
	Bool bool
	Raw  string
}

// Text renders the value as the string stored into the variable store:
// strings verbatim, numbers in their canonical textual form, booleans as
// "true"/"false", anything else as its serialized JSON text.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return v.Raw
	}
}

// find evaluates a path against a JSON body using gjson, supporting both
// "$.field" and bare "field" syntax. Array results collapse to their first
// element; missing paths and JSON null report not-found.
func find(body []byte, path string) (Value, bool) {
	// Strip leading $. if present, or handle bare $ as the entire document.
	if len(path) > 0 && path[0] == '$' {
		if len(path) > 1 && path[1] == '.' {
			path = path[2:]
		} else if len(path) == 1 {
			path = "@this"
		}
	}

	result := gjson.GetBytes(body, path)
	if !result.Exists() || result.Type == gjson.Null {
		return Value{}, false
	}

	if result.IsArray() {
		elems := result.Array()
		if len(elems) == 0 {
			return Value{}, false
		}
		result = elems[0]
		if !result.Exists() || result.Type == gjson.Null {
			return Value{}, false
		}
	}

	return fromResult(result), true
}

func fromResult(result gjson.Result) Value {
	switch result.Type {
	case gjson.String:
		return Value{Kind: KindString, Str: result.String()}
	case gjson.Number:
		return Value{Kind: KindNumber, Num: result.String()}
	case gjson.True:
		return Value{Kind: KindBool, Bool: true}
	case gjson.False:
		return Value{Kind: KindBool, Bool: false}
	default:
		return Value{Kind: KindOther, Raw: result.Raw}
	}
}
