package chaincode

import (
	"encoding/json"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// NotaryContract keeps an append-only log of signed statements. Entries are
// keyed by a caller-supplied log id and immutable once written; no update
// operation exists.
type NotaryContract struct {
	contractapi.Contract
}

func NewNotaryContract() *NotaryContract {
	c := &NotaryContract{}
	c.Name = "NotaryContract"
	return c
}

// AddNotaryLog creates a new immutable log entry. Duplicate ids are rejected.
func (c *NotaryContract) AddNotaryLog(ctx contractapi.TransactionContextInterface, id string, participantID string, timestamp string, logType string, text string) (*NotaryLogEntry, error) {
	return c.addNotaryLog(ledgerFromContext(ctx), id, participantID, timestamp, logType, text)
}

func (c *NotaryContract) addNotaryLog(ledger LedgerAccess, id, participantID, timestamp, logType, text string) (*NotaryLogEntry, error) {
	exists, err := stateExists(ledger, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, transitionError(KindDuplicateKey, "notary log with id %s already exists", id)
	}

	entry := &NotaryLogEntry{
		Kind:          kindNotaryLog,
		ID:            id,
		ParticipantID: participantID,
		Timestamp:     timestamp,
		Type:          logType,
		Text:          text,
	}
	data, err := marshalNotaryLog(entry)
	if err != nil {
		return nil, err
	}
	if err := ledger.PutState(id, data); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetNotaryLog returns the log entry stored under id.
func (c *NotaryContract) GetNotaryLog(ctx contractapi.TransactionContextInterface, id string) (*NotaryLogEntry, error) {
	return c.getNotaryLog(ledgerFromContext(ctx), id)
}

func (c *NotaryContract) getNotaryLog(ledger LedgerAccess, id string) (*NotaryLogEntry, error) {
	data, err := ledger.GetState(id)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, transitionError(KindNotFound, "notary log with id %s does not exist", id)
	}
	return unmarshalNotaryLog(data)
}

// GetAllNotaryLogs scans the full key range and returns every notary entry
// as a serialized key/record list. Legacy values that do not decode as JSON
// are returned as raw text.
func (c *NotaryContract) GetAllNotaryLogs(ctx contractapi.TransactionContextInterface) (string, error) {
	results, err := c.getAllNotaryLogs(ledgerFromContext(ctx))
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *NotaryContract) getAllNotaryLogs(ledger LedgerAccess) ([]QueryRecord, error) {
	return scanByKind(ledger, kindNotaryLog)
}

// scanByKind walks the whole flat namespace and keeps records whose kind tag
// matches, plus raw values that are not JSON objects at all.
func scanByKind(ledger LedgerAccess, kind string) ([]QueryRecord, error) {
	it, err := ledger.GetStateByRange("", "")
	if err != nil {
		return nil, err
	}
	defer it.Close()

	results := []QueryRecord{}
	for it.HasNext() {
		key, value, err := it.Next()
		if err != nil {
			return nil, err
		}
		if len(value) == 0 {
			continue
		}

		var decoded map[string]interface{}
		if err := json.Unmarshal(value, &decoded); err != nil {
			results = append(results, QueryRecord{Key: key, Record: string(value)})
			continue
		}
		if tag, _ := decoded["kind"].(string); tag == kind {
			results = append(results, QueryRecord{Key: key, Record: decoded})
		}
	}
	return results, nil
}
