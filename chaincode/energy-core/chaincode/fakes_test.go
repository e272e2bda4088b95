package chaincode

import (
	"sort"
	"time"
)

// memLedger is an in-memory LedgerAccess used to drive transitions in tests.
type memLedger struct {
	state  map[string][]byte
	events map[string][]byte
	now    time.Time
}

func newMemLedger() *memLedger {
	return &memLedger{
		state:  make(map[string][]byte),
		events: make(map[string][]byte),
		now:    time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC),
	}
}

func (l *memLedger) GetState(key string) ([]byte, error) {
	value, ok := l.state[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (l *memLedger) PutState(key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	l.state[key] = stored
	return nil
}

func (l *memLedger) DelState(key string) error {
	delete(l.state, key)
	return nil
}

func (l *memLedger) GetStateByRange(startKey, endKey string) (StateIterator, error) {
	var keys []string
	for key := range l.state {
		if startKey != "" && key < startKey {
			continue
		}
		if endKey != "" && key >= endKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	it := &memIterator{}
	for _, key := range keys {
		it.keys = append(it.keys, key)
		it.values = append(it.values, l.state[key])
	}
	return it, nil
}

func (l *memLedger) TxTimestamp() (time.Time, error) {
	return l.now, nil
}

func (l *memLedger) SetEvent(name string, payload []byte) error {
	l.events[name] = payload
	return nil
}

type memIterator struct {
	keys   []string
	values [][]byte
	pos    int
}

func (it *memIterator) HasNext() bool {
	return it.pos < len(it.keys)
}

func (it *memIterator) Next() (string, []byte, error) {
	key, value := it.keys[it.pos], it.values[it.pos]
	it.pos++
	return key, value, nil
}

func (it *memIterator) Close() error {
	return nil
}

// fakeCaller is a CallerIdentity with a fixed enrollment id and attribute set.
type fakeCaller struct {
	id    string
	attrs map[string]string
}

func (c *fakeCaller) ID() (string, error) {
	return c.id, nil
}

func (c *fakeCaller) Attribute(name string) (string, bool, error) {
	value, ok := c.attrs[name]
	return value, ok, nil
}

func adminCaller() *fakeCaller {
	return &fakeCaller{
		id:    "x509::CN=admin,OU=client::CN=ca.grid.example.com,O=grid.example.com",
		attrs: map[string]string{"id": "admin", "role": "Admin"},
	}
}

func participantCaller(id, role string) *fakeCaller {
	return &fakeCaller{
		id:    "x509::CN=" + id + ",OU=client::CN=ca.grid.example.com,O=grid.example.com",
		attrs: map[string]string{"id": id, "role": role},
	}
}
