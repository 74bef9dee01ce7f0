package cmdline

// Param is a single named parameter.
//
// Value is rendered with fmt.Sprint unless it is a bool or nil, so floats
// use their shortest form: 2.0 becomes "2" and 1e21 becomes "1e+21". Pass a
// string such as "2.0" to keep a particular decimal form.
type Param struct {
	Key   string
	Value any
}

// Params is an insertion-ordered mapping of parameter names to values.
//
// The zero value is an empty mapping ready to use. Keys are unique when built
// through Set or Merge; a literal with duplicate keys renders every entry.
type Params []Param

// index returns the position of key, or -1.
func (p Params) index(key string) int {
	for i := range p {
		if p[i].Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	if i := p.index(key); i >= 0 {
		return p[i].Value, true
	}
	return nil, false
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	return p.index(key) >= 0
}

// Keys returns the keys in insertion order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i := range p {
		keys[i] = p[i].Key
	}
	return keys
}

// Set stores value under key. An existing key keeps its position.
func (p *Params) Set(key string, value any) {
	if i := p.index(key); i >= 0 {
		(*p)[i].Value = value
		return
	}
	*p = append(*p, Param{Key: key, Value: value})
}

// Delete removes key and returns the value it held.
func (p *Params) Delete(key string) (any, bool) {
	i := p.index(key)
	if i < 0 {
		return nil, false
	}
	v := (*p)[i].Value
	*p = append((*p)[:i:i], (*p)[i+1:]...)
	return v, true
}

// Merge sets every parameter of other on p, in order.
func (p *Params) Merge(other Params) {
	for _, kv := range other {
		p.Set(kv.Key, kv.Value)
	}
}

// Clone returns a copy that shares no backing storage with p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	copy(out, p)
	return out
}
