package kernel

// PropertyType selects what kind of value a Property cell holds.
type PropertyType uint8

const (
	PropertyInt PropertyType = iota
	PropertyBin
)

// maxPropertyBytes caps a binary property's payload.
const maxPropertyBytes = 512

// intPropertyWidth is the fixed width of an int property regardless of any
// pre-allocated length a caller passed to Define.
const intPropertyWidth = 4

// Property is a typed (category, key) cell with a one-shot subscriber list:
// every Set notifies every currently-registered subscriber exactly once,
// then the list is cleared.
type Property struct {
	object

	category int32
	key      int32
	typ      PropertyType
	maxLen   int
	intVal   int32
	binVal   []byte
	subs     []subscription
}

// Define creates or reinitializes the property at (category, key). Any
// previous subscribers are dropped along with the old value, matching
// "reinitialize" rather than "merge".
func (k *Kernel) Define(category, key int32, typ PropertyType, maxLen int) objectID {
	k.mu.Lock()
	defer k.mu.Unlock()

	if typ == PropertyBin && maxLen > maxPropertyBytes {
		maxLen = maxPropertyBytes
	}
	if id, ok := k.propIndex[propKey{category, key}]; ok {
		p, _ := k.properties.get(id)
		p.typ = typ
		p.maxLen = maxLen
		p.intVal = 0
		p.binVal = nil
		p.subs = nil
		return id
	}

	p := &Property{
		object:   object{kind: KindProperty, owner: OwnerKernel},
		category: category,
		key:      key,
		typ:      typ,
		maxLen:   maxLen,
	}
	id := k.properties.add(p)
	p.id = id
	k.propIndex[propKey{category, key}] = id
	return id
}

func (k *Kernel) lookupPropertyLocked(category, key int32) (*Property, bool) {
	id, ok := k.propIndex[propKey{category, key}]
	if !ok {
		return nil, false
	}
	return k.properties.get(id)
}

// SetInt stores an int value and notifies every subscriber exactly once.
func (k *Kernel) SetInt(category, key int32, value int32) KErr {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.lookupPropertyLocked(category, key)
	if !ok {
		return KErrNotFound
	}
	if p.typ != PropertyInt {
		return KErrArgument
	}
	p.intVal = value
	k.notifySubsLocked(&p.subs, KErrNone)
	return KErrNone
}

// SetBin stores a binary value, rejecting payloads over the defined
// capacity, and notifies every subscriber exactly once.
func (k *Kernel) SetBin(category, key int32, value []byte) KErr {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.lookupPropertyLocked(category, key)
	if !ok {
		return KErrNotFound
	}
	if p.typ != PropertyBin {
		return KErrArgument
	}
	if len(value) > p.maxLen || len(value) > maxPropertyBytes {
		return KErrOverflow
	}
	p.binVal = append([]byte(nil), value...)
	k.notifySubsLocked(&p.subs, KErrNone)
	return KErrNone
}

// GetInt reads the current value without notifying anyone.
func (k *Kernel) GetInt(category, key int32) (int32, KErr) {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.lookupPropertyLocked(category, key)
	if !ok || p.typ != PropertyInt {
		return 0, KErrNotFound
	}
	return p.intVal, KErrNone
}

// GetBin reads the current value without notifying anyone.
func (k *Kernel) GetBin(category, key int32) ([]byte, KErr) {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.lookupPropertyLocked(category, key)
	if !ok || p.typ != PropertyBin {
		return nil, KErrNotFound
	}
	return append([]byte(nil), p.binVal...), KErrNone
}

// Subscribe registers status to be completed exactly once on the property's
// next Set call.
func (k *Kernel) Subscribe(category, key int32, status *RequestStatus) KErr {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.lookupPropertyLocked(category, key)
	if !ok {
		return KErrNotFound
	}
	p.subs = append(p.subs, subscription{status: status})
	return KErrNone
}

// NotifyProp force-notifies every current subscriber of (category, key)
// without changing the value, then clears the list — used by host drivers
// that mutate a property's backing store out-of-band.
func (k *Kernel) NotifyProp(category, key int32) KErr {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.lookupPropertyLocked(category, key)
	if !ok {
		return KErrNotFound
	}
	k.notifySubsLocked(&p.subs, KErrNone)
	return KErrNone
}
