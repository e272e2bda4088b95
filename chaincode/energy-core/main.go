package main

import (
	"log"

	"github.com/gridmarket/energy-trading/chaincode/energy-core/chaincode"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

func main() {
	// The contract registry is built explicitly here: every contract the
	// chaincode exposes is constructed and named at process start.
	energyChaincode, err := contractapi.NewChaincode(
		chaincode.NewIdentityContract(chaincode.SubjectCommonNameMatcher("admin"), chaincode.DefaultRoles),
		chaincode.NewEnergyTradingContract(),
		chaincode.NewNotaryContract(),
		chaincode.NewPolicyContract(),
	)
	if err != nil {
		log.Panicf("Error creating energy trading chaincode: %v", err)
	}

	energyChaincode.DefaultContract = "EnergyTradingContract"

	if err := energyChaincode.Start(); err != nil {
		log.Panicf("Error starting energy trading chaincode: %v", err)
	}
}
