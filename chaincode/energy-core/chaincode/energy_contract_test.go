package chaincode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAsset(t *testing.T, c *EnergyTradingContract, ledger LedgerAccess, owner, id string, units int) *EnergyAsset {
	t.Helper()
	asset, err := c.createAsset(ledger, owner, id, "Producer1", "Solar", units)
	require.NoError(t, err)
	return asset
}

func TestCreateAndReadAssetRoundTrip(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()

	created, err := c.createAsset(ledger, "p1", "asset-1", "SunFarm", "Solar", 100)
	require.NoError(t, err)

	stored, err := c.readAsset(ledger, "asset-1")
	require.NoError(t, err)
	assert.Equal(t, created, stored)
	assert.Equal(t, []Trade{}, stored.TransactionHistory)
	assert.Equal(t, kindEnergyAsset, stored.Kind)
}

func TestCreateAssetRejectsDuplicateAndNegativeUnits(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()

	seedAsset(t, c, ledger, "p1", "asset-1", 100)

	_, err := c.createAsset(ledger, "p2", "asset-1", "Other", "Wind", 5)
	require.Error(t, err)
	assert.Equal(t, KindDuplicateKey, KindOf(err))

	_, err = c.createAsset(ledger, "p1", "asset-2", "SunFarm", "Solar", -1)
	require.Error(t, err)
	assert.Equal(t, KindInvalidField, KindOf(err))
}

func TestAssetExists(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()

	exists, err := stateExists(ledger, "asset-1")
	require.NoError(t, err)
	assert.False(t, exists)

	seedAsset(t, c, ledger, "p1", "asset-1", 10)
	exists, err = stateExists(ledger, "asset-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdateAssetAllowList(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()
	seedAsset(t, c, ledger, "p1", "asset-1", 100)

	updated, err := c.updateAsset(ledger, "asset-1", `{"producer":"WindCo","energyType":"Wind","units":42}`)
	require.NoError(t, err)
	assert.Equal(t, "WindCo", updated.Producer)
	assert.Equal(t, "Wind", updated.EnergyType)
	assert.Equal(t, 42, updated.Units)
	// Owner and id are untouched.
	assert.Equal(t, "p1", updated.OwnerParticipantID)
	assert.Equal(t, "asset-1", updated.ID)
}

func TestUpdateAssetRejectsForbiddenFields(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()
	seedAsset(t, c, ledger, "p1", "asset-1", 100)

	for _, fields := range []string{
		`{"participantId":"p2"}`,
		`{"id":"asset-2"}`,
		`{"transactionHistory":[]}`,
		`{"kind":"Other"}`,
		`{"units":-5}`,
		`{"units":"many"}`,
		`not-json`,
	} {
		_, err := c.updateAsset(ledger, "asset-1", fields)
		require.Error(t, err, "fields %s should be rejected", fields)
		assert.Equal(t, KindInvalidField, KindOf(err))
	}

	// Nothing leaked through.
	stored, err := c.readAsset(ledger, "asset-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", stored.OwnerParticipantID)
	assert.Equal(t, 100, stored.Units)
}

func TestUpdateAssetNotFound(t *testing.T) {
	c := NewEnergyTradingContract()

	_, err := c.updateAsset(newMemLedger(), "ghost", `{"units":1}`)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDeleteAsset(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()
	seedAsset(t, c, ledger, "p1", "asset-1", 100)

	require.NoError(t, c.deleteAsset(ledger, "asset-1"))

	_, err := c.readAsset(ledger, "asset-1")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	err = c.deleteAsset(ledger, "asset-1")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestTradeEnergyScenario(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()
	seedAsset(t, c, ledger, "P1", "A1", 100)
	seedAsset(t, c, ledger, "P2", "A2", 0)

	trade, err := c.tradeEnergy(ledger, "P2", "A2", "P1", "A1", 40)
	require.NoError(t, err)
	assert.Equal(t, "P2", trade.BuyerID)
	assert.Equal(t, "P1", trade.SellerID)
	assert.Equal(t, 40, trade.Units)
	assert.Equal(t, []string{"P2", "P1"}, trade.TargetAudience)
	assert.Equal(t, "2024-05-17T09:30:00Z", trade.Timestamp)

	a1, err := c.readAsset(ledger, "A1")
	require.NoError(t, err)
	a2, err := c.readAsset(ledger, "A2")
	require.NoError(t, err)
	assert.Equal(t, 60, a1.Units)
	assert.Equal(t, 40, a2.Units)

	// Both histories contain the identical trade record.
	require.Len(t, a1.TransactionHistory, 1)
	require.Len(t, a2.TransactionHistory, 1)
	assert.Equal(t, *trade, a1.TransactionHistory[0])
	assert.Equal(t, a1.TransactionHistory[0], a2.TransactionHistory[0])

	history, err := c.getTransactionHistory(ledger, "A2")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 40, history[0].Units)
}

func TestTradeEnergyConservation(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()
	seedAsset(t, c, ledger, "P1", "A1", 250)
	seedAsset(t, c, ledger, "P2", "A2", 75)

	before := 250 + 75
	_, err := c.tradeEnergy(ledger, "P2", "A2", "P1", "A1", 113)
	require.NoError(t, err)

	a1, err := c.readAsset(ledger, "A1")
	require.NoError(t, err)
	a2, err := c.readAsset(ledger, "A2")
	require.NoError(t, err)
	assert.Equal(t, before, a1.Units+a2.Units)
	assert.GreaterOrEqual(t, a1.Units, 0)
}

func TestTradeEnergyInsufficientBalanceLeavesStateUnchanged(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()
	seedAsset(t, c, ledger, "P1", "A1", 30)
	seedAsset(t, c, ledger, "P2", "A2", 5)

	_, err := c.tradeEnergy(ledger, "P2", "A2", "P1", "A1", 31)
	require.Error(t, err)
	assert.Equal(t, KindInsufficientBalance, KindOf(err))

	a1, err := c.readAsset(ledger, "A1")
	require.NoError(t, err)
	a2, err := c.readAsset(ledger, "A2")
	require.NoError(t, err)
	assert.Equal(t, 30, a1.Units)
	assert.Equal(t, 5, a2.Units)
	assert.Empty(t, a1.TransactionHistory)
	assert.Empty(t, a2.TransactionHistory)
}

func TestTradeEnergyOnlyOwnerCanSell(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()
	seedAsset(t, c, ledger, "P1", "A1", 100)
	seedAsset(t, c, ledger, "P2", "A2", 0)

	_, err := c.tradeEnergy(ledger, "P2", "A2", "P3", "A1", 10)
	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	a1, err := c.readAsset(ledger, "A1")
	require.NoError(t, err)
	assert.Equal(t, 100, a1.Units)
	assert.Empty(t, a1.TransactionHistory)
}

func TestTradeEnergyRejectsSelfTrade(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()
	seedAsset(t, c, ledger, "P1", "A1", 100)
	seedAsset(t, c, ledger, "P1", "A2", 0)

	_, err := c.tradeEnergy(ledger, "P1", "A2", "P1", "A1", 10)
	require.Error(t, err)
	assert.Equal(t, KindSelfTrade, KindOf(err))
}

func TestTradeEnergyMissingAsset(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()
	seedAsset(t, c, ledger, "P1", "A1", 100)

	_, err := c.tradeEnergy(ledger, "P2", "ghost", "P1", "A1", 10)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = c.tradeEnergy(ledger, "P2", "A1", "P1", "ghost", 10)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestTradeEnergyCheckOrder(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()
	// Seller does not own the asset AND the balance is short: balance wins.
	seedAsset(t, c, ledger, "P1", "A1", 5)
	seedAsset(t, c, ledger, "P2", "A2", 0)

	_, err := c.tradeEnergy(ledger, "P2", "A2", "P3", "A1", 10)
	require.Error(t, err)
	assert.Equal(t, KindInsufficientBalance, KindOf(err))
}

func TestTradeEnergyRejectsSameAssetOnBothSides(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()
	seedAsset(t, c, ledger, "P1", "A1", 100)

	_, err := c.tradeEnergy(ledger, "P2", "A1", "P1", "A1", 10)
	require.Error(t, err)
	assert.Equal(t, KindInvalidField, KindOf(err))

	// No units vanished.
	a1, err := c.readAsset(ledger, "A1")
	require.NoError(t, err)
	assert.Equal(t, 100, a1.Units)
	assert.Empty(t, a1.TransactionHistory)
}

func TestTradeEnergyRejectsNonPositiveUnits(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()
	seedAsset(t, c, ledger, "P1", "A1", 100)
	seedAsset(t, c, ledger, "P2", "A2", 0)

	for _, units := range []int{0, -10} {
		_, err := c.tradeEnergy(ledger, "P2", "A2", "P1", "A1", units)
		require.Error(t, err)
		assert.Equal(t, KindInvalidField, KindOf(err))
	}
}

func TestTradeEnergyEmitsTradeCompleted(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()
	seedAsset(t, c, ledger, "P1", "A1", 100)
	seedAsset(t, c, ledger, "P2", "A2", 0)

	trade, err := c.tradeEnergy(ledger, "P2", "A2", "P1", "A1", 25)
	require.NoError(t, err)

	payload, ok := ledger.events[TradeCompletedEvent]
	require.True(t, ok, "TradeCompleted event not emitted")

	var emitted Trade
	require.NoError(t, json.Unmarshal(payload, &emitted))
	assert.Equal(t, *trade, emitted)
}

func TestInitLedgerSeedsDemoAssets(t *testing.T) {
	c := NewEnergyTradingContract()
	ledger := newMemLedger()

	require.NoError(t, c.initLedger(ledger))

	asset1, err := c.readAsset(ledger, "Asset1")
	require.NoError(t, err)
	assert.Equal(t, "Solar", asset1.EnergyType)
	assert.Equal(t, 100, asset1.Units)

	asset2, err := c.readAsset(ledger, "Asset2")
	require.NoError(t, err)
	assert.Equal(t, "Wind", asset2.EnergyType)
	assert.Equal(t, 300, asset2.Units)
}
