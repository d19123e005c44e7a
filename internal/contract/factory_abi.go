package contract

// FactoryABI is the consumed surface of the token factory contract.
//
// createToken is payable: the attached value is the creation fee payment.
// TokenCreated indexes the new token address as its first indexed parameter,
// so a receipt log carries it in topics[1].
var FactoryABI = []ABIEntry{
	// ── Read ─────────────────────────────────────────────────────────────────
	{
		Name: "creationFee", Type: "function",
		Inputs: nil, Outputs: []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "getAllUserTokens", Type: "function",
		Inputs:          []ABIParam{{Name: "owner", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "address[]"}},
		StateMutability: "view",
	},
	// ── Write ────────────────────────────────────────────────────────────────
	{
		Name: "createToken", Type: "function",
		Inputs: []ABIParam{
			{Name: "name", Type: "string"},
			{Name: "symbol", Type: "string"},
			{Name: "totalSupply", Type: "uint256"},
		},
		Outputs:         nil,
		StateMutability: "payable",
	},
	// ── Events ───────────────────────────────────────────────────────────────
	{
		Name: "TokenCreated", Type: "event",
		Inputs: []ABIParam{
			{Name: "tokenAddress", Type: "address"},
			{Name: "creator", Type: "address"},
			{Name: "name", Type: "string"},
		},
	},
}
