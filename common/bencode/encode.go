package bencode

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/elliotchance/orderedmap"
	"github.com/juju/errors"
)

// Raw is an already-encoded value written through verbatim.
type Raw []byte

// Encode serialises obj canonically. Dictionary keys are always written in
// ascending byte order regardless of the input map type.
func Encode(obj any) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := encodeAny(buf, obj)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeInt(buf *bytes.Buffer, val int64) {
	buf.WriteByte('i')
	buf.WriteString(strconv.FormatInt(val, 10))
	buf.WriteByte('e')
}

func encodeString(buf *bytes.Buffer, val string) {
	buf.WriteString(strconv.Itoa(len(val)))
	buf.WriteByte(':')
	buf.WriteString(val)
}

func encodeBytes(buf *bytes.Buffer, data []byte) {
	buf.WriteString(strconv.Itoa(len(data)))
	buf.WriteByte(':')
	buf.Write(data)
}

func encodeMap(buf *bytes.Buffer, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf.WriteByte('d')
	for _, k := range keys {
		encodeString(buf, k)
		err := encodeAny(buf, m[k])
		if err != nil {
			return errors.Annotatef(err, "key %q", k)
		}
	}
	buf.WriteByte('e')
	return nil
}

func encodeOrderedMap(buf *bytes.Buffer, m *orderedmap.OrderedMap) error {
	plain := make(map[string]any, m.Len())
	for _, k := range m.Keys() {
		key, ok := k.(string)
		if !ok {
			return errors.Errorf("unsupported dictionary key type %T", k)
		}
		plain[key], _ = m.Get(k)
	}
	return encodeMap(buf, plain)
}

func encodeList(buf *bytes.Buffer, list []any) error {
	buf.WriteByte('l')
	for _, item := range list {
		err := encodeAny(buf, item)
		if err != nil {
			return err
		}
	}
	buf.WriteByte('e')
	return nil
}

func encodeAny(buf *bytes.Buffer, item any) error {
	switch v := item.(type) {
	case int:
		encodeInt(buf, int64(v))
	case int32:
		encodeInt(buf, int64(v))
	case int64:
		encodeInt(buf, v)
	case uint32:
		encodeInt(buf, int64(v))
	case bool:
		if v {
			encodeInt(buf, 1)
		} else {
			encodeInt(buf, 0)
		}
	case string:
		encodeString(buf, v)
	case []byte:
		encodeBytes(buf, v)
	case Raw:
		if len(v) == 0 {
			return errors.New("empty raw value")
		}
		buf.Write(v)
	case map[string]any:
		return encodeMap(buf, v)
	case *orderedmap.OrderedMap:
		return encodeOrderedMap(buf, v)
	case []any:
		return encodeList(buf, v)
	case []string:
		buf.WriteByte('l')
		for _, s := range v {
			encodeString(buf, s)
		}
		buf.WriteByte('e')
	case [][]string:
		buf.WriteByte('l')
		for _, tier := range v {
			_ = encodeAny(buf, tier)
		}
		buf.WriteByte('e')
	default:
		return errors.Errorf("unsupported type %T", item)
	}
	return nil
}
