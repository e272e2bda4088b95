package chaincode

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// policyDefaultsKey holds the record mapping policy categories to the
// policies applied by default in each category.
const policyDefaultsKey = "PolicyDefaults"

// PolicyDefaults maps the three governance categories onto the policy UUIDs
// consulted by default.
type PolicyDefaults struct {
	Kind      string   `json:"kind"`
	Ingest    []string `json:"ingest"`
	DataUsage []string `json:"data_usage"`
	ExPost    []string `json:"ex_post"`
}

// PolicyContract stores the versioned access-policy catalog. Policies are
// reference data keyed by UUID, mutated only through explicit adds, never by
// trades.
type PolicyContract struct {
	contractapi.Contract
}

func NewPolicyContract() *PolicyContract {
	c := &PolicyContract{}
	c.Name = "PolicyContract"
	return c
}

// InitLedger seeds the default policy catalog and the category defaults.
func (c *PolicyContract) InitLedger(ctx contractapi.TransactionContextInterface) error {
	return c.initLedger(ledgerFromContext(ctx))
}

func (c *PolicyContract) initLedger(ledger LedgerAccess) error {
	for _, policy := range defaultPolicies() {
		data, err := marshalPolicy(policy)
		if err != nil {
			return err
		}
		if err := ledger.PutState(policy.ID, data); err != nil {
			return err
		}
	}

	defaults := defaultPolicyCategories()
	data, err := json.Marshal(defaults)
	if err != nil {
		return err
	}
	return ledger.PutState(policyDefaultsKey, data)
}

// AddPolicy stores or overrides a policy. The id must be a well-formed UUID
// and the body must decode into the policy shape.
func (c *PolicyContract) AddPolicy(ctx contractapi.TransactionContextInterface, id string, policyJSON string) (*Policy, error) {
	return c.addPolicy(ledgerFromContext(ctx), id, policyJSON)
}

func (c *PolicyContract) addPolicy(ledger LedgerAccess, id, policyJSON string) (*Policy, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, transitionError(KindInvalidField, "policy id %s is not a valid UUID", id)
	}

	policy, err := unmarshalPolicy([]byte(policyJSON))
	if err != nil {
		return nil, transitionError(KindInvalidField, "policy body is not valid: %v", err)
	}
	policy.Kind = kindPolicy
	policy.ID = id

	data, err := marshalPolicy(policy)
	if err != nil {
		return nil, err
	}
	if err := ledger.PutState(id, data); err != nil {
		return nil, err
	}
	return policy, nil
}

// GetPolicy returns the policy stored under id.
func (c *PolicyContract) GetPolicy(ctx contractapi.TransactionContextInterface, id string) (*Policy, error) {
	return c.getPolicy(ledgerFromContext(ctx), id)
}

func (c *PolicyContract) getPolicy(ledger LedgerAccess, id string) (*Policy, error) {
	data, err := ledger.GetState(id)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, transitionError(KindNotFound, "policy with id %s does not exist", id)
	}
	return unmarshalPolicy(data)
}

// GetDefaultPolicies returns the category-to-policy defaults seeded at
// initialization.
func (c *PolicyContract) GetDefaultPolicies(ctx contractapi.TransactionContextInterface) (*PolicyDefaults, error) {
	return c.getDefaultPolicies(ledgerFromContext(ctx))
}

func (c *PolicyContract) getDefaultPolicies(ledger LedgerAccess) (*PolicyDefaults, error) {
	data, err := ledger.GetState(policyDefaultsKey)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, transitionError(KindNotFound, "policy defaults are not initialized")
	}
	var defaults PolicyDefaults
	if err := json.Unmarshal(data, &defaults); err != nil {
		return nil, err
	}
	return &defaults, nil
}

// GetAllPolicies scans the full key range and returns every policy as a
// serialized key/record list. Legacy values that do not decode as JSON are
// returned as raw text.
func (c *PolicyContract) GetAllPolicies(ctx contractapi.TransactionContextInterface) (string, error) {
	results, err := scanByKind(ledgerFromContext(ctx), kindPolicy)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
