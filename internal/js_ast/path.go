package js_ast

import (
	"strconv"
	"strings"
)

// Properties are addressed by a path of keys starting at some value. A key is
// either a concrete property name or the unknown key, which stands for any
// property. The unknown key never equals a concrete key, not even "".
type PathKey struct {
	Name    string
	Unknown bool
}

var UnknownKey = PathKey{Unknown: true}

func Key(name string) PathKey {
	return PathKey{Name: name}
}

func (key PathKey) String() string {
	if key.Unknown {
		return "<unknown>"
	}
	return key.Name
}

type Path []PathKey

var EmptyPath = Path{}
var UnknownPath = Path{UnknownKey}

// Queries on paths longer than this are answered conservatively. This keeps
// analysis of self-referential structures finite.
const MaxPathDepth = 7

// Prepends a key without aliasing the receiver
func (path Path) Prepend(key PathKey) Path {
	result := make(Path, 0, len(path)+1)
	result = append(result, key)
	return append(result, path...)
}

func (path Path) Rest() Path {
	if len(path) <= 1 {
		return EmptyPath
	}
	return path[1:]
}

func (path Path) Equals(other Path) bool {
	if len(path) != len(other) {
		return false
	}
	for i, key := range path {
		if key != other[i] {
			return false
		}
	}
	return true
}

// A collision-free string form used as a map key. Each concrete key is
// length-prefixed so that no name can imitate the unknown key.
func (path Path) Key() string {
	if len(path) == 0 {
		return ""
	}
	sb := strings.Builder{}
	for _, key := range path {
		if key.Unknown {
			sb.WriteByte('?')
			continue
		}
		sb.WriteString(strconv.Itoa(len(key.Name)))
		sb.WriteByte(':')
		sb.WriteString(key.Name)
	}
	return sb.String()
}

func (path Path) String() string {
	parts := make([]string, len(path))
	for i, key := range path {
		parts[i] = key.String()
	}
	return strings.Join(parts, ".")
}
