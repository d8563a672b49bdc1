package codec

// Kind is the type tag recorded in an envelope.
type Kind string

const (
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindNull    Kind = "null"
	KindMap     Kind = "map"
	KindSet     Kind = "set"
	KindDate    Kind = "date"
	KindAny     Kind = "any"
)

// Kinds lists every recognized tag in classification precedence order,
// with the any fallback last.
var Kinds = []Kind{KindNull, KindSet, KindMap, KindDate, KindObject, KindString, KindBoolean, KindNumber, KindAny}

// Known reports whether k is one of the recognized tags.
func (k Kind) Known() bool {
	switch k {
	case KindNumber, KindString, KindBoolean, KindObject, KindNull, KindMap, KindSet, KindDate, KindAny:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Classify returns the kind x would be stored under. It never fails:
// anything without a better match is KindAny.
func Classify(x any) Kind {
	return Of(x).Kind()
}
