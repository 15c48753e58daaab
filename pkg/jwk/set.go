package jwk

import (
	"bytes"
	"encoding/json"

	"github.com/trustkit/jose/pkg/errcode"
	"golang.org/x/exp/slices"
)

// Media types of a serialized key and key set.
//
// https://datatracker.ietf.org/doc/html/rfc7517#section-8.5
const (
	MIMEKey = "application/jwk+json; charset=UTF-8"
	MIMESet = "application/jwk-set+json; charset=UTF-8"
)

// KeysMember is the reserved member of a key set holding its keys.
const KeysMember = "keys"

// Set is a JWK set as defined in RFC 7517, keyed by key ID.
//
// Adding a key whose ID is already in the set replaces the existing key in
// its original position (last write wins), which is how key rotation is
// expressed when sets are merged. Keys without a key ID are never replaced.
//
// A Set is not safe for concurrent mutation.
//
// https://datatracker.ietf.org/doc/html/rfc7517#section-5
type Set struct {
	keys  []*Key
	index map[string]int

	customNames []string
	custom      map[string]any

	err error
}

// NewSet returns an empty key set.
func NewSet(keys ...*Key) *Set {
	s := &Set{
		index:  map[string]int{},
		custom: map[string]any{},
	}
	for _, key := range keys {
		s.Add(key)
	}
	return s
}

// ParseSet parses a key set from its JSON object.
func ParseSet(data []byte) (*Set, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v map[string]any
	if err := dec.Decode(&v); err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.SetMalformed, err)
	}
	return FromJSON(v)
}

// FromJSON returns the key set for a decoded JSON object. Every element of
// the "keys" array must be a valid key; the first one that is not aborts
// the parse. Every other member must be a string, number, boolean or null,
// and is kept as a custom member.
func FromJSON(v map[string]any) (*Set, error) {
	if v == nil {
		return nil, errcode.New(errcode.Argument, errcode.SetMalformed)
	}

	items, ok := v[KeysMember].([]any)
	if !ok {
		return nil, errcode.New(errcode.Argument, errcode.SetMalformed)
	}

	s := NewSet()
	for i, item := range items {
		value, ok := item.(map[string]any)
		if !ok {
			return nil, errcode.New(errcode.Argument, errcode.SetMember, i)
		}
		key, err := NewKey(value)
		if err != nil {
			return nil, errcode.Wrap(errcode.Argument, errcode.SetMember, err, i)
		}
		s.Add(key)
	}

	names := make([]string, 0, len(v))
	for name := range v {
		if name != KeysMember {
			names = append(names, name)
		}
	}
	// encoding/json does not preserve member order, so custom members
	// parsed from JSON are kept sorted by name.
	slices.Sort(names)

	for _, name := range names {
		s.AddCustom(name, v[name])
	}
	if s.err != nil {
		return nil, s.err
	}

	return s, nil
}

// Add adds a key to the set, replacing any key with the same key ID.
func (s *Set) Add(key *Key) *Set {
	if key == nil {
		return s
	}
	kid := key.KeyID()
	if kid == "" {
		s.keys = append(s.keys, key)
		return s
	}
	if i, ok := s.index[kid]; ok {
		s.keys[i] = key
		return s
	}
	s.index[kid] = len(s.keys)
	s.keys = append(s.keys, key)
	return s
}

// AddCustom adds a custom top-level member, which must be a string, number,
// boolean or nil. An invalid member is recorded and returned by Err and
// MarshalJSON.
func (s *Set) AddCustom(name string, value any) *Set {
	if name == KeysMember {
		s.fail(errcode.New(errcode.Argument, errcode.SetCustomReserved, name))
		return s
	}
	switch value.(type) {
	case nil, string, bool, json.Number,
		float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
	default:
		s.fail(errcode.New(errcode.Argument, errcode.SetCustomType, name, value))
		return s
	}
	if _, ok := s.custom[name]; !ok {
		s.customNames = append(s.customNames, name)
	}
	s.custom[name] = value
	return s
}

func (s *Set) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Err returns the first error recorded by AddCustom.
func (s *Set) Err() error {
	return s.err
}

// Get returns the key with the given key ID.
func (s *Set) Get(kid string) (*Key, error) {
	if i, ok := s.index[kid]; ok && kid != "" {
		return s.keys[i], nil
	}
	return nil, errcode.New(errcode.Argument, errcode.SetKeyNotFound, kid)
}

// Len returns the number of keys in the set.
func (s *Set) Len() int {
	return len(s.keys)
}

// Keys returns the keys of the set in insertion order.
func (s *Set) Keys() []*Key {
	return append([]*Key(nil), s.keys...)
}

// Custom returns the value of a custom member.
func (s *Set) Custom(name string) (any, bool) {
	v, ok := s.custom[name]
	return v, ok
}

// CustomNames returns the names of the custom members in insertion order.
func (s *Set) CustomNames() []string {
	return append([]string(nil), s.customNames...)
}

// Validate returns an error if the set has no keys.
func (s *Set) Validate() error {
	if s.err != nil {
		return s.err
	}
	if len(s.keys) == 0 {
		return errcode.New(errcode.Argument, errcode.SetEmpty)
	}
	return nil
}

// Public returns a set of the public parts of every asymmetric key, with the
// same custom members. Symmetric keys are omitted.
func (s *Set) Public() *Set {
	p := NewSet()
	for _, key := range s.keys {
		p.Add(key.Public())
	}
	for _, name := range s.customNames {
		p.AddCustom(name, s.custom[name])
	}
	return p
}

// MarshalJSON emits the "keys" array followed by the custom members in
// insertion order.
func (s *Set) MarshalJSON() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}

	keys := s.keys
	if keys == nil {
		keys = []*Key{}
	}

	var buf bytes.Buffer
	buf.WriteString(`{"keys":`)
	b, err := json.Marshal(keys)
	if err != nil {
		return nil, err
	}
	buf.Write(b)

	for _, name := range s.customNames {
		n, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.custom[name])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(n)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
