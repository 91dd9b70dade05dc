package bencode

import (
	"bytes"
	"fmt"
	"sort"
)

// Encode serializes v deterministically. Dictionary keys are sorted
// lexicographically by raw byte value, as BEP 3 requires of a conformant
// encoder; this is what makes Encode safe to use for info_hash computation
// on values the decoder itself produced in sorted order (parsed metainfo
// instead relies on the original byte span, since a source .torrent is not
// guaranteed to have been written by a sorting encoder).
func Encode(v Value) []byte {
	var buf bytes.Buffer
	writeValue(&buf, v)
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v Value) {
	switch v.Kind {
	case String:
		writeString(buf, v.Str)
	case Int:
		fmt.Fprintf(buf, "i%de", v.Num)
	case List:
		buf.WriteByte('l')
		for _, item := range v.List {
			writeValue(buf, item)
		}
		buf.WriteByte('e')
	case Dict:
		writeDict(buf, v.Dict)
	}
}

func writeString(buf *bytes.Buffer, s []byte) {
	fmt.Fprintf(buf, "%d:", len(s))
	buf.Write(s)
}

func writeDict(buf *bytes.Buffer, entries []DictEntry) {
	sorted := make([]DictEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Key, sorted[j].Key) < 0
	})

	buf.WriteByte('d')
	for _, e := range sorted {
		writeString(buf, e.Key)
		writeValue(buf, e.Val)
	}
	buf.WriteByte('e')
}
