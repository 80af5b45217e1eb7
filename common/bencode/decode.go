package bencode

import (
	"bytes"
	"strconv"

	"torrent-info/common/errs"

	"github.com/elliotchance/orderedmap"
)

// maxDepth bounds list and dictionary nesting.
const maxDepth = 512

// Decode parses one canonical bencoded value that must span all of buf.
//
// Byte strings decode to []byte, integers to int64, lists to []any and
// dictionaries to *orderedmap.OrderedMap keyed by string in wire order.
func Decode(buf []byte) (any, error) {
	ret, pos, err := decodeAny(buf, 0, 0)
	if err != nil {
		return nil, err
	}
	if pos != len(buf) {
		return nil, errs.Parsef("trailing data at offset %d", pos)
	}
	return ret, nil
}

// DecodeDict is Decode for inputs whose top-level value must be a dictionary.
func DecodeDict(buf []byte) (*orderedmap.OrderedMap, error) {
	v, err := Decode(buf)
	if err != nil {
		return nil, err
	}
	m, ok := v.(*orderedmap.OrderedMap)
	if !ok {
		return nil, errs.Parsef("top-level value is not a dictionary")
	}
	return m, nil
}

// RawValue returns the exact encoded bytes of key in the top-level dictionary of buf.
// The returned slice aliases buf.
func RawValue(buf []byte, key string) ([]byte, error) {
	if len(buf) == 0 || buf[0] != 'd' {
		return nil, errs.Parsef("top-level value is not a dictionary")
	}
	i := 1
	var found []byte
	var prev []byte
	for {
		if i >= len(buf) {
			return nil, errs.Parsef("unterminated dictionary")
		}
		if buf[i] == 'e' {
			i++
			break
		}
		k, next, err := decodeKey(buf, i, prev)
		if err != nil {
			return nil, err
		}
		prev = k
		_, end, err := decodeAny(buf, next, 1)
		if err != nil {
			return nil, err
		}
		if string(k) == key {
			found = buf[next:end]
		}
		i = end
	}
	if i != len(buf) {
		return nil, errs.Parsef("trailing data at offset %d", i)
	}
	if found == nil {
		return nil, errs.Parsef("missing %q key", key)
	}
	return found, nil
}

func decodeAny(buf []byte, pos, depth int) (any, int, error) {
	if pos >= len(buf) {
		return nil, 0, errs.Parsef("unexpected end of data at offset %d", pos)
	}
	if depth >= maxDepth {
		return nil, 0, errs.Parsef("nesting too deep at offset %d", pos)
	}
	switch buf[pos] {
	case 'i':
		return decodeInt(buf, pos)
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return decodeBytes(buf, pos)
	case 'l':
		return decodeList(buf, pos, depth)
	case 'd':
		return decodeDict(buf, pos, depth)
	default:
		return nil, 0, errs.Parsef("unexpected token %q at offset %d", buf[pos], pos)
	}
}

func decodeList(buf []byte, pos, depth int) ([]any, int, error) {
	ret := make([]any, 0)
	i := pos + 1
	for {
		if i >= len(buf) {
			return nil, 0, errs.Parsef("unterminated list starting at offset %d", pos)
		}
		if buf[i] == 'e' {
			return ret, i + 1, nil
		}
		item, next, err := decodeAny(buf, i, depth+1)
		if err != nil {
			return nil, 0, err
		}
		ret = append(ret, item)
		i = next
	}
}

func decodeDict(buf []byte, pos, depth int) (*orderedmap.OrderedMap, int, error) {
	ret := orderedmap.NewOrderedMap()
	i := pos + 1
	var prev []byte
	for {
		if i >= len(buf) {
			return nil, 0, errs.Parsef("unterminated dictionary starting at offset %d", pos)
		}
		if buf[i] == 'e' {
			return ret, i + 1, nil
		}
		key, next, err := decodeKey(buf, i, prev)
		if err != nil {
			return nil, 0, err
		}
		prev = key
		value, end, err := decodeAny(buf, next, depth+1)
		if err != nil {
			return nil, 0, err
		}
		ret.Set(string(key), value)
		i = end
	}
}

// decodeKey reads a dictionary key and checks it sorts strictly after prev.
func decodeKey(buf []byte, pos int, prev []byte) ([]byte, int, error) {
	if buf[pos] < '0' || buf[pos] > '9' {
		return nil, 0, errs.Parsef("dictionary key at offset %d is not a byte string", pos)
	}
	key, next, err := decodeBytes(buf, pos)
	if err != nil {
		return nil, 0, err
	}
	if prev != nil && bytes.Compare(prev, key) >= 0 {
		return nil, 0, errs.Parsef("dictionary key %q at offset %d is duplicated or out of order", key, pos)
	}
	return key, next, nil
}

func decodeBytes(buf []byte, pos int) ([]byte, int, error) {
	i := pos
	for ; i < len(buf) && buf[i] != ':'; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			return nil, 0, errs.Parsef("illegal string length at offset %d", pos)
		}
	}
	if i >= len(buf) {
		return nil, 0, errs.Parsef("unterminated string length at offset %d", pos)
	}
	digits := buf[pos:i]
	if len(digits) > 1 && digits[0] == '0' {
		return nil, 0, errs.Parsef("non-canonical string length at offset %d", pos)
	}
	l, err := strconv.Atoi(string(digits))
	if err != nil {
		return nil, 0, errs.Parsef("illegal string length at offset %d", pos)
	}
	begin := i + 1
	if l > len(buf)-begin {
		return nil, 0, errs.Parsef("string at offset %d overruns input", pos)
	}
	return buf[begin : begin+l], begin + l, nil
}

func decodeInt(buf []byte, pos int) (int64, int, error) {
	begin := pos + 1
	i := begin
	for ; i < len(buf) && buf[i] != 'e'; i++ {
	}
	if i >= len(buf) {
		return 0, 0, errs.Parsef("unterminated integer at offset %d", pos)
	}
	digits := buf[begin:i]
	if !canonicalInt(digits) {
		return 0, 0, errs.Parsef("non-canonical integer %q at offset %d", digits, pos)
	}
	ret, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, 0, errs.Parsef("integer %q at offset %d out of range", digits, pos)
	}
	return ret, i + 1, nil
}

func canonicalInt(digits []byte) bool {
	if len(digits) == 0 {
		return false
	}
	body := digits
	if body[0] == '-' {
		body = body[1:]
		if len(body) == 0 || body[0] == '0' {
			return false
		}
	}
	for _, c := range body {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(body) == 1 || body[0] != '0'
}
