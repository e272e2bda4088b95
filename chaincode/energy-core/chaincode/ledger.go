package chaincode

import (
	"time"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/pkg/errors"
)

// LedgerAccess is the slice of the world state the transition logic needs.
// All writes issued through one LedgerAccess belong to the same Fabric
// transaction and become visible atomically on commit.
type LedgerAccess interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
	DelState(key string) error
	GetStateByRange(startKey, endKey string) (StateIterator, error)
	TxTimestamp() (time.Time, error)
	SetEvent(name string, payload []byte) error
}

// StateIterator walks a key range lazily. Callers must Close it.
type StateIterator interface {
	HasNext() bool
	Next() (key string, value []byte, err error)
	Close() error
}

// CallerIdentity exposes the platform-attested attributes of the invoking
// client. Lookups are pure; a missing attribute is reported, not an error.
type CallerIdentity interface {
	ID() (string, error)
	Attribute(name string) (value string, found bool, err error)
}

type stubLedger struct {
	stub shim.ChaincodeStubInterface
}

func ledgerFromContext(ctx contractapi.TransactionContextInterface) LedgerAccess {
	return &stubLedger{stub: ctx.GetStub()}
}

func (l *stubLedger) GetState(key string) ([]byte, error) {
	value, err := l.stub.GetState(key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read key %s from world state", key)
	}
	return value, nil
}

func (l *stubLedger) PutState(key string, value []byte) error {
	if err := l.stub.PutState(key, value); err != nil {
		return errors.Wrapf(err, "failed to write key %s to world state", key)
	}
	return nil
}

func (l *stubLedger) DelState(key string) error {
	if err := l.stub.DelState(key); err != nil {
		return errors.Wrapf(err, "failed to delete key %s from world state", key)
	}
	return nil
}

func (l *stubLedger) GetStateByRange(startKey, endKey string) (StateIterator, error) {
	it, err := l.stub.GetStateByRange(startKey, endKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open range iterator")
	}
	return &stubIterator{it: it}, nil
}

// TxTimestamp is the endorsement-time transaction timestamp, identical on
// every peer that executes the transaction. Wall-clock time must never be
// used in a transition.
func (l *stubLedger) TxTimestamp() (time.Time, error) {
	ts, err := l.stub.GetTxTimestamp()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "failed to get transaction timestamp")
	}
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC(), nil
}

func (l *stubLedger) SetEvent(name string, payload []byte) error {
	if err := l.stub.SetEvent(name, payload); err != nil {
		return errors.Wrapf(err, "failed to set %s event", name)
	}
	return nil
}

type stubIterator struct {
	it shim.StateQueryIteratorInterface
}

func (s *stubIterator) HasNext() bool {
	return s.it.HasNext()
}

func (s *stubIterator) Next() (string, []byte, error) {
	kv, err := s.it.Next()
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to advance range iterator")
	}
	return kv.Key, kv.Value, nil
}

func (s *stubIterator) Close() error {
	return s.it.Close()
}

type clientCaller struct {
	id cid.ClientIdentity
}

func callerFromContext(ctx contractapi.TransactionContextInterface) CallerIdentity {
	return &clientCaller{id: ctx.GetClientIdentity()}
}

func (c *clientCaller) ID() (string, error) {
	return c.id.GetID()
}

func (c *clientCaller) Attribute(name string) (string, bool, error) {
	return c.id.GetAttributeValue(name)
}

// stateExists reports whether any record is stored under key.
func stateExists(ledger LedgerAccess, key string) (bool, error) {
	value, err := ledger.GetState(key)
	if err != nil {
		return false, err
	}
	return len(value) > 0, nil
}
