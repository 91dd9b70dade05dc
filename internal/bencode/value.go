// Package bencode implements a decoder and encoder for the bencode format
// used throughout the BitTorrent v1 wire and metainfo formats. Unlike a
// reflection-based marshaller, Decode builds an explicit, self-describing
// Value tree so that callers needing the exact byte span of a nested value
// (the info dictionary, most notably) can slice the original input directly
// instead of re-encoding a parsed representation.
package bencode

// Kind identifies which of the four bencode alternatives a Value holds.
type Kind int

const (
	// String holds an arbitrary byte string (not necessarily UTF-8).
	String Kind = iota
	// Int holds a signed integer that fits in 64 bits.
	Int
	// List holds an ordered sequence of values.
	List
	// Dict holds an ordered mapping of byte-string keys to values.
	Dict
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case List:
		return "list"
	case Dict:
		return "dict"
	default:
		return "invalid"
	}
}

// DictEntry is one key/value pair of a Dict value, in the order it appeared
// in the source.
type DictEntry struct {
	Key []byte
	Val Value
}

// Value is a recursive, tagged bencode value. Only the field matching Kind
// is meaningful. Start and End record the byte offsets of this value within
// the slice originally passed to Decode, which lets callers such as the
// metainfo parser recover the exact encoded bytes of a sub-value.
type Value struct {
	Kind Kind

	Str  []byte
	Num  int64
	List []Value
	Dict []DictEntry

	Start int
	End   int
}

// NewString builds a string Value.
func NewString(b []byte) Value { return Value{Kind: String, Str: b} }

// NewInt builds an integer Value.
func NewInt(n int64) Value { return Value{Kind: Int, Num: n} }

// NewList builds a list Value.
func NewList(items []Value) Value { return Value{Kind: List, List: items} }

// NewDict builds a dict Value from entries already in the desired order.
func NewDict(entries []DictEntry) Value { return Value{Kind: Dict, Dict: entries} }

// DictGet looks up key in a Dict value. It reports false if v is not a
// dictionary or the key is absent.
func (v Value) DictGet(key string) (Value, bool) {
	if v.Kind != Dict {
		return Value{}, false
	}
	for _, e := range v.Dict {
		if string(e.Key) == key {
			return e.Val, true
		}
	}
	return Value{}, false
}

// Raw returns the exact encoded bytes this value occupied in the buffer
// passed to Decode. It is only valid for values produced by Decode, not for
// values built with the New* constructors.
func (v Value) Raw(source []byte) []byte {
	return source[v.Start:v.End]
}
