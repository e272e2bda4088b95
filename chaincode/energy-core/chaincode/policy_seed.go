package chaincode

// Default policy catalog written to the ledger at initialization. All five
// policies currently point at the gdpr-attribution policy pack.

var gdprAttributionURL = PolicyURL{
	Human:   "/policies/gdpr-attribution/README.txt",
	Legal:   "/policies/gdpr-attribution/POLICY.txt",
	Machine: "/policies/gdpr-attribution/gdpr-attribution.eflint",
}

var gdprAttributionHash = PolicyHash{
	Human:   "e5e61f918d66cd421ee506dff43f713b3e74449a23d035b65b8115196d7397d9",
	Legal:   "d0119b1ff66c27f3973c0437bc2a19d426f6a5532313abca9cd9b7fdd37ba614",
	Machine: "8C2B4CA076E57619E239958200FF18D4CFC0E931755C2648D66B36F2BD4D7E0B",
}

const (
	policyConsumerAccess  = "cc0c5381-3c43-4c64-86d9-770655ebb696"
	policyConsortiumRules = "8cceff93-ac99-4d10-a121-35413e3bea5a"
	policyPartnerData     = "21693473-d070-43bf-aca7-b75adbb51e48"
	policyPartnerAlgo     = "488c847c-b533-48db-931c-113e1ba35371"
	policyExPostChecks    = "3a1c4ab9-3fe1-4b93-afc7-ebbd068afaa2"
)

func defaultPolicies() []*Policy {
	return []*Policy{
		{
			Kind: kindPolicy,
			ID:   policyConsumerAccess,
			Name: "Consumer allowed to access provider data",
			Inputs: []PolicyInput{
				{Name: "provider_consortium_uuid", Description: "Consortium UUID of data provider", Source: "internal"},
				{Name: "consumer_consortium_uuid", Description: "Consortium UUID of data consumer", Source: "internal"},
			},
			Outputs:  []PolicyOutput{{Name: "access_allowed", Description: "Access allowed"}},
			URL:      gdprAttributionURL,
			HashType: "SHA-256",
			Hash:     gdprAttributionHash,
		},
		{
			Kind: kindPolicy,
			ID:   policyConsortiumRules,
			Name: "Data confirms to consortium rules",
			Inputs: []PolicyInput{
				{Name: "dataview_uuid", Description: "Dataview UUID", Source: "internal"},
			},
			Outputs:  []PolicyOutput{{Name: "data_ok", Description: "Data OK"}},
			URL:      gdprAttributionURL,
			HashType: "SHA-256",
			Hash:     gdprAttributionHash,
		},
		{
			Kind: kindPolicy,
			ID:   policyPartnerData,
			Name: "Consortium partner allowed to access data",
			Inputs: []PolicyInput{
				{Name: "provider_consortium_uuid", Description: "Consortium UUID of data provider", Source: "internal"},
				{Name: "consumer_consortium_uuid", Description: "Consortium UUID of data consumer", Source: "internal"},
				{Name: "dataview_uuid", Description: "Dataview UUID", Source: "internal"},
			},
			Outputs:  []PolicyOutput{{Name: "access_allowed", Description: "Access allowed"}},
			URL:      gdprAttributionURL,
			HashType: "SHA-256",
			Hash:     gdprAttributionHash,
		},
		{
			Kind: kindPolicy,
			ID:   policyPartnerAlgo,
			Name: "Consortium partner allowed to access algorithm",
			Inputs: []PolicyInput{
				{Name: "provider_consortium_uuid", Description: "Consortium UUID of data provider", Source: "internal"},
				{Name: "consumer_consortium_uuid", Description: "Consortium UUID of data consumer", Source: "internal"},
				{Name: "algorithm_uuid", Description: "Algorithm UUID", Source: "internal"},
			},
			Outputs:  []PolicyOutput{{Name: "access_allowed", Description: "Access allowed"}},
			URL:      gdprAttributionURL,
			HashType: "SHA-256",
			Hash:     gdprAttributionHash,
		},
		{
			Kind: kindPolicy,
			ID:   policyExPostChecks,
			Name: "Ex Post checks",
			Inputs: []PolicyInput{
				{Name: "auditlogs", Description: "Audit logs", Source: "internal"},
			},
			Outputs:  []PolicyOutput{{Name: "ex_post_ok", Description: "Ex Post OK"}},
			URL:      gdprAttributionURL,
			HashType: "SHA-256",
			Hash:     gdprAttributionHash,
		},
	}
}

func defaultPolicyCategories() *PolicyDefaults {
	return &PolicyDefaults{
		Kind:      "PolicyDefaults",
		Ingest:    []string{policyConsortiumRules},
		DataUsage: []string{policyConsumerAccess, policyPartnerData},
		ExPost:    []string{policyExPostChecks},
	}
}
