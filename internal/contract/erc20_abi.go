package contract

// ERC20ABI is the subset of the standard ERC-20 interface (EIP-20) read when
// building the token history list.
//
// Function selectors:
//
//	name()        → 0x06fdde03
//	symbol()      → 0x95d89b41
//	totalSupply() → 0x18160ddd
var ERC20ABI = []ABIEntry{
	{
		Name: "name", Type: "function",
		Inputs: nil, Outputs: []ABIParam{{Name: "", Type: "string"}},
		StateMutability: "view",
	},
	{
		Name: "symbol", Type: "function",
		Inputs: nil, Outputs: []ABIParam{{Name: "", Type: "string"}},
		StateMutability: "view",
	},
	{
		Name: "totalSupply", Type: "function",
		Inputs: nil, Outputs: []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
}
