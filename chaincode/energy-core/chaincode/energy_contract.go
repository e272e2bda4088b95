package chaincode

import (
	"encoding/json"
	"time"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// TradeCompletedEvent is the chaincode event emitted after a successful trade.
// Its payload is the serialized Trade record.
const TradeCompletedEvent = "TradeCompleted"

// assetUpdatableFields is the allow-list applied by UpdateAsset. The asset id,
// owner and transaction history are never writable through a field update;
// ownership moves only through trades.
var assetUpdatableFields = map[string]struct{}{
	"producer":   {},
	"energyType": {},
	"units":      {},
}

// EnergyTradingContract manages energy assets and executes trades between
// them. Assets are keyed by their bare id in the shared namespace.
type EnergyTradingContract struct {
	contractapi.Contract
}

func NewEnergyTradingContract() *EnergyTradingContract {
	c := &EnergyTradingContract{}
	c.Name = "EnergyTradingContract"
	return c
}

// InitLedger seeds two demo assets so a fresh channel has something to trade.
func (c *EnergyTradingContract) InitLedger(ctx contractapi.TransactionContextInterface) error {
	return c.initLedger(ledgerFromContext(ctx))
}

func (c *EnergyTradingContract) initLedger(ledger LedgerAccess) error {
	seed := []*EnergyAsset{
		{Kind: kindEnergyAsset, OwnerParticipantID: "Participant1", ID: "Asset1", Producer: "Producer1", EnergyType: "Solar", Units: 100, TransactionHistory: []Trade{}},
		{Kind: kindEnergyAsset, OwnerParticipantID: "Participant2", ID: "Asset2", Producer: "Producer2", EnergyType: "Wind", Units: 300, TransactionHistory: []Trade{}},
	}
	for _, asset := range seed {
		data, err := marshalAsset(asset)
		if err != nil {
			return err
		}
		if err := ledger.PutState(asset.ID, data); err != nil {
			return err
		}
	}
	return nil
}

// CreateAsset registers a new energy asset with an empty transaction history.
// Caller authorization is the gateway's responsibility at this layer.
func (c *EnergyTradingContract) CreateAsset(ctx contractapi.TransactionContextInterface, ownerID string, id string, producer string, energyType string, units int) (*EnergyAsset, error) {
	return c.createAsset(ledgerFromContext(ctx), ownerID, id, producer, energyType, units)
}

func (c *EnergyTradingContract) createAsset(ledger LedgerAccess, ownerID, id, producer, energyType string, units int) (*EnergyAsset, error) {
	if units < 0 {
		return nil, transitionError(KindInvalidField, "units must be a non-negative integer, got %d", units)
	}

	exists, err := stateExists(ledger, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, transitionError(KindDuplicateKey, "asset %s already exists", id)
	}

	asset := &EnergyAsset{
		Kind:               kindEnergyAsset,
		OwnerParticipantID: ownerID,
		ID:                 id,
		Producer:           producer,
		EnergyType:         energyType,
		Units:              units,
		TransactionHistory: []Trade{},
	}
	data, err := marshalAsset(asset)
	if err != nil {
		return nil, err
	}
	if err := ledger.PutState(id, data); err != nil {
		return nil, err
	}
	return asset, nil
}

// ReadAsset returns the asset stored under id.
func (c *EnergyTradingContract) ReadAsset(ctx contractapi.TransactionContextInterface, id string) (*EnergyAsset, error) {
	return c.readAsset(ledgerFromContext(ctx), id)
}

func (c *EnergyTradingContract) readAsset(ledger LedgerAccess, id string) (*EnergyAsset, error) {
	data, err := ledger.GetState(id)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, transitionError(KindNotFound, "asset %s does not exist", id)
	}
	return unmarshalAsset(data)
}

// AssetExists reports whether an asset is stored under id.
func (c *EnergyTradingContract) AssetExists(ctx contractapi.TransactionContextInterface, id string) (bool, error) {
	return stateExists(ledgerFromContext(ctx), id)
}

// UpdateAsset applies an allow-listed set of field changes from a JSON object
// onto an existing asset. Unknown or forbidden fields are rejected rather
// than merged.
func (c *EnergyTradingContract) UpdateAsset(ctx contractapi.TransactionContextInterface, id string, fieldsJSON string) (*EnergyAsset, error) {
	return c.updateAsset(ledgerFromContext(ctx), id, fieldsJSON)
}

func (c *EnergyTradingContract) updateAsset(ledger LedgerAccess, id, fieldsJSON string) (*EnergyAsset, error) {
	asset, err := c.readAsset(ledger, id)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return nil, transitionError(KindInvalidField, "field map is not a JSON object: %v", err)
	}

	for name, raw := range fields {
		if _, ok := assetUpdatableFields[name]; !ok {
			return nil, transitionError(KindInvalidField, "field %s cannot be updated", name)
		}
		switch name {
		case "producer":
			if err := json.Unmarshal(raw, &asset.Producer); err != nil {
				return nil, transitionError(KindInvalidField, "producer must be a string")
			}
		case "energyType":
			if err := json.Unmarshal(raw, &asset.EnergyType); err != nil {
				return nil, transitionError(KindInvalidField, "energyType must be a string")
			}
		case "units":
			var units int
			if err := json.Unmarshal(raw, &units); err != nil {
				return nil, transitionError(KindInvalidField, "units must be an integer")
			}
			if units < 0 {
				return nil, transitionError(KindInvalidField, "units must be a non-negative integer, got %d", units)
			}
			asset.Units = units
		}
	}

	data, err := marshalAsset(asset)
	if err != nil {
		return nil, err
	}
	if err := ledger.PutState(id, data); err != nil {
		return nil, err
	}
	return asset, nil
}

// DeleteAsset removes an asset. Irreversible.
func (c *EnergyTradingContract) DeleteAsset(ctx contractapi.TransactionContextInterface, id string) error {
	return c.deleteAsset(ledgerFromContext(ctx), id)
}

func (c *EnergyTradingContract) deleteAsset(ledger LedgerAccess, id string) error {
	exists, err := stateExists(ledger, id)
	if err != nil {
		return err
	}
	if !exists {
		return transitionError(KindNotFound, "asset %s does not exist", id)
	}
	return ledger.DelState(id)
}

// GetTransactionHistory returns the ordered trade history of an asset.
func (c *EnergyTradingContract) GetTransactionHistory(ctx contractapi.TransactionContextInterface, id string) ([]Trade, error) {
	return c.getTransactionHistory(ledgerFromContext(ctx), id)
}

func (c *EnergyTradingContract) getTransactionHistory(ledger LedgerAccess, id string) ([]Trade, error) {
	asset, err := c.readAsset(ledger, id)
	if err != nil {
		return nil, err
	}
	return asset.TransactionHistory, nil
}

// TradeEnergy moves units from the selling asset to the buying asset as one
// atomic transition. The check order is fixed: existence, distinct assets,
// balance, ownership, self-trade. A failed check returns before anything is
// written, so an
// aborted or conflicted transaction can be retried from a fresh read with no
// partial effect.
func (c *EnergyTradingContract) TradeEnergy(ctx contractapi.TransactionContextInterface, buyerID string, buyingAssetID string, sellerID string, sellingAssetID string, units int) (*Trade, error) {
	return c.tradeEnergy(ledgerFromContext(ctx), buyerID, buyingAssetID, sellerID, sellingAssetID, units)
}

func (c *EnergyTradingContract) tradeEnergy(ledger LedgerAccess, buyerID, buyingAssetID, sellerID, sellingAssetID string, units int) (*Trade, error) {
	buyingAsset, err := c.readAsset(ledger, buyingAssetID)
	if err != nil {
		return nil, err
	}
	sellingAsset, err := c.readAsset(ledger, sellingAssetID)
	if err != nil {
		return nil, err
	}

	if units <= 0 {
		return nil, transitionError(KindInvalidField, "units must be a positive integer, got %d", units)
	}
	// Writing both sides back under one key would let the second write clobber
	// the first and destroy units.
	if buyingAssetID == sellingAssetID {
		return nil, transitionError(KindInvalidField, "buying and selling asset cannot be the same")
	}
	if sellingAsset.Units < units {
		return nil, transitionError(KindInsufficientBalance, "not enough energy units for trading")
	}
	if sellingAsset.OwnerParticipantID != sellerID {
		return nil, transitionError(KindUnauthorized, "only the owner of the asset can sell it")
	}
	if buyerID == sellerID {
		return nil, transitionError(KindSelfTrade, "buyer and seller cannot be the same participant")
	}

	// Conservation: the sum of both balances is unchanged by the transfer.
	buyingAsset.Units += units
	sellingAsset.Units -= units

	ts, err := ledger.TxTimestamp()
	if err != nil {
		return nil, err
	}
	trade := Trade{
		BuyerID:        buyerID,
		SellerID:       sellerID,
		Units:          units,
		Timestamp:      ts.Format(time.RFC3339),
		TargetAudience: []string{buyerID, sellerID},
	}

	// The same record goes into both histories so the audit trails are
	// identical on both sides.
	buyingAsset.TransactionHistory = append(buyingAsset.TransactionHistory, trade)
	sellingAsset.TransactionHistory = append(sellingAsset.TransactionHistory, trade)

	buyingData, err := marshalAsset(buyingAsset)
	if err != nil {
		return nil, err
	}
	sellingData, err := marshalAsset(sellingAsset)
	if err != nil {
		return nil, err
	}
	if err := ledger.PutState(buyingAssetID, buyingData); err != nil {
		return nil, err
	}
	if err := ledger.PutState(sellingAssetID, sellingData); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(trade)
	if err == nil {
		// Best effort: the event is not required for ledger correctness.
		_ = ledger.SetEvent(TradeCompletedEvent, payload)
	}

	return &trade, nil
}
