package chaincode

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// IdentityContract manages participant records. Participants are keyed under
// "Participant:<id>" in the shared namespace.
type IdentityContract struct {
	contractapi.Contract
	admin AdminMatcher
	roles map[string]struct{}
}

// NewIdentityContract builds the contract with the deployment's admin
// capability check and role set.
func NewIdentityContract(admin AdminMatcher, roles []string) *IdentityContract {
	c := &IdentityContract{admin: admin, roles: make(map[string]struct{}, len(roles))}
	for _, role := range roles {
		c.roles[role] = struct{}{}
	}
	c.Name = "IdentityContract"
	return c
}

func (c *IdentityContract) isRoleValid(role string) bool {
	_, ok := c.roles[role]
	return ok
}

// CreateParticipant registers a new participant. Only administrators can
// create participants.
func (c *IdentityContract) CreateParticipant(ctx contractapi.TransactionContextInterface, id string, name string, role string) (*Participant, error) {
	return c.createParticipant(ledgerFromContext(ctx), callerFromContext(ctx), id, name, role)
}

func (c *IdentityContract) createParticipant(ledger LedgerAccess, caller CallerIdentity, id, name, role string) (*Participant, error) {
	if !isAdminCaller(c.admin, caller) {
		return nil, transitionError(KindUnauthorized, "only administrators can create participants")
	}
	if !c.isRoleValid(role) {
		return nil, transitionError(KindInvalidRole, "role %s is not a valid participant role", role)
	}

	key := participantKey(id)
	exists, err := stateExists(ledger, key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, transitionError(KindDuplicateKey, "participant with id %s already exists", id)
	}

	participant := &Participant{Kind: kindParticipant, ID: id, Name: name, Role: role}
	data, err := marshalParticipant(participant)
	if err != nil {
		return nil, err
	}
	if err := ledger.PutState(key, data); err != nil {
		return nil, err
	}
	return participant, nil
}

// GetParticipant returns a participant record. Regular participants can only
// read their own record; administrators can read any.
func (c *IdentityContract) GetParticipant(ctx contractapi.TransactionContextInterface, id string) (*Participant, error) {
	return c.getParticipant(ledgerFromContext(ctx), callerFromContext(ctx), id)
}

func (c *IdentityContract) getParticipant(ledger LedgerAccess, caller CallerIdentity, id string) (*Participant, error) {
	if callerParticipantID(caller) != id && !isAdminCaller(c.admin, caller) {
		return nil, transitionError(KindUnauthorized, "only administrators can query other participants")
	}

	data, err := ledger.GetState(participantKey(id))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, transitionError(KindNotFound, "participant with id %s was not found", id)
	}
	return unmarshalParticipant(data)
}

// UpdateParticipantRole rewrites a participant's role in place. Only
// administrators can change roles; the participant id is immutable.
func (c *IdentityContract) UpdateParticipantRole(ctx contractapi.TransactionContextInterface, id string, role string) (*Participant, error) {
	return c.updateParticipantRole(ledgerFromContext(ctx), callerFromContext(ctx), id, role)
}

func (c *IdentityContract) updateParticipantRole(ledger LedgerAccess, caller CallerIdentity, id, role string) (*Participant, error) {
	if !isAdminCaller(c.admin, caller) {
		return nil, transitionError(KindUnauthorized, "only administrators can update participant roles")
	}
	if !c.isRoleValid(role) {
		return nil, transitionError(KindInvalidRole, "role %s is not a valid participant role", role)
	}

	key := participantKey(id)
	data, err := ledger.GetState(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, transitionError(KindNotFound, "participant with id %s was not found", id)
	}

	participant, err := unmarshalParticipant(data)
	if err != nil {
		return nil, err
	}
	participant.Role = role

	updated, err := marshalParticipant(participant)
	if err != nil {
		return nil, err
	}
	if err := ledger.PutState(key, updated); err != nil {
		return nil, err
	}
	return participant, nil
}
