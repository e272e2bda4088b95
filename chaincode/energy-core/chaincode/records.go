package chaincode

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Record kind discriminants. Every record stored by this chaincode carries an
// explicit kind tag so range scans over the flat namespace can tell record
// types apart.
const (
	kindParticipant = "Participant"
	kindEnergyAsset = "EnergyTrading"
	kindNotaryLog   = "NotaryLog"
	kindPolicy      = "Policy"
)

const participantKeyPrefix = "Participant:"

// Participant is a registered marketplace actor.
type Participant struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func participantKey(id string) string {
	return participantKeyPrefix + id
}

func marshalParticipant(p *Participant) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize participant")
	}
	return data, nil
}

func unmarshalParticipant(data []byte) (*Participant, error) {
	var p Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "failed to deserialize participant")
	}
	return &p, nil
}

// Trade is one completed exchange of energy units. The identical record is
// appended to both participating assets' histories and emitted as the
// TradeCompleted event payload.
type Trade struct {
	BuyerID        string   `json:"buyerId"`
	SellerID       string   `json:"sellerId"`
	Units          int      `json:"units"`
	Timestamp      string   `json:"timestamp"`
	TargetAudience []string `json:"targetAudience"`
}

// EnergyAsset is a tradable quantity of energy units (kWh) owned by one
// participant. Assets are keyed by their bare id.
type EnergyAsset struct {
	Kind               string  `json:"kind"`
	OwnerParticipantID string  `json:"participantId"`
	ID                 string  `json:"id"`
	Producer           string  `json:"producer"`
	EnergyType         string  `json:"energyType"`
	Units              int     `json:"units"`
	TransactionHistory []Trade `json:"transactionHistory"`
}

func marshalAsset(a *EnergyAsset) ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize energy asset")
	}
	return data, nil
}

func unmarshalAsset(data []byte) (*EnergyAsset, error) {
	var a EnergyAsset
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errors.Wrap(err, "failed to deserialize energy asset")
	}
	return &a, nil
}

// NotaryLogEntry is an immutable, caller-attributed audit statement keyed by a
// caller-supplied log id. No update operation exists for it.
type NotaryLogEntry struct {
	Kind          string `json:"kind"`
	ID            string `json:"id"`
	ParticipantID string `json:"participantId"`
	Timestamp     string `json:"timestamp"`
	Type          string `json:"type"`
	Text          string `json:"text"`
}

func marshalNotaryLog(e *NotaryLogEntry) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize notary log")
	}
	return data, nil
}

func unmarshalNotaryLog(data []byte) (*NotaryLogEntry, error) {
	var e NotaryLogEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.Wrap(err, "failed to deserialize notary log")
	}
	return &e, nil
}

// Policy is a hash-addressed descriptor of an access/usage rule consulted by
// external governance tooling. Policies are keyed by UUID and mutated only
// through AddPolicy, never by trades.
type Policy struct {
	Kind     string         `json:"kind"`
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Inputs   []PolicyInput  `json:"inputs"`
	Outputs  []PolicyOutput `json:"outputs"`
	URL      PolicyURL      `json:"url"`
	HashType string         `json:"hash_type"`
	Hash     PolicyHash     `json:"hash"`
}

type PolicyInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

type PolicyOutput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PolicyURL locates the human, legal and machine renditions of a policy.
type PolicyURL struct {
	Human   string `json:"human"`
	Legal   string `json:"legal"`
	Machine string `json:"machine"`
}

type PolicyHash struct {
	Human   string `json:"human"`
	Legal   string `json:"legal"`
	Machine string `json:"machine"`
}

func marshalPolicy(p *Policy) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize policy")
	}
	return data, nil
}

func unmarshalPolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "failed to deserialize policy")
	}
	return &p, nil
}

// QueryRecord is one key/record pair returned by a full range scan. Record is
// the decoded JSON value, or the raw text for legacy values that do not
// decode.
type QueryRecord struct {
	Key    string      `json:"key"`
	Record interface{} `json:"record"`
}
