package contract

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ABIEntry is one ABI entry (function, event, etc.).
type ABIEntry struct {
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Inputs          []ABIParam `json:"inputs"`
	Outputs         []ABIParam `json:"outputs"`
	StateMutability string     `json:"stateMutability"`
}

// ABIParam is a parameter in an ABI entry.
type ABIParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// IsReadFunction returns true if the function is read-only (view/pure).
func (e ABIEntry) IsReadFunction() bool {
	return e.Type == "function" &&
		(e.StateMutability == "view" || e.StateMutability == "pure")
}

// IsWriteFunction returns true if the function modifies state.
func (e ABIEntry) IsWriteFunction() bool {
	return e.Type == "function" &&
		(e.StateMutability == "nonpayable" || e.StateMutability == "payable")
}

// IsPayable returns true if the function accepts attached value.
func (e ABIEntry) IsPayable() bool {
	return e.Type == "function" && e.StateMutability == "payable"
}

func findFunction(abi []ABIEntry, name string) *ABIEntry {
	for i := range abi {
		if abi[i].Type == "function" && abi[i].Name == name {
			return &abi[i]
		}
	}
	return nil
}

// --- ABI encoding ---

// encodeCall builds calldata: 4-byte selector + head words + dynamic tail.
// Dynamic parameters (string) are encoded head/tail per the ABI spec.
func encodeCall(fn *ABIEntry, args []string) (string, error) {
	headSize := 32 * len(fn.Inputs)
	heads := make([][]byte, len(fn.Inputs))
	var tail []byte

	for i, param := range fn.Inputs {
		var argStr string
		if i < len(args) {
			argStr = args[i]
		}
		if param.Type == "string" || param.Type == "bytes" {
			heads[i] = appendUint256(nil, uint64(headSize+len(tail)))
			tail = appendString(tail, []byte(argStr))
			continue
		}
		word, err := encodeStatic(param.Type, argStr)
		if err != nil {
			return "", fmt.Errorf("encoding param %s: %w", param.Name, err)
		}
		heads[i] = word
	}

	var encoded strings.Builder
	encoded.WriteString(functionSelector(fn))
	for _, h := range heads {
		encoded.WriteString(hex.EncodeToString(h))
	}
	encoded.WriteString(hex.EncodeToString(tail))
	return encoded.String(), nil
}

// functionSelector computes the 4-byte selector for a function.
func functionSelector(fn *ABIEntry) string {
	sig := fn.Name + "("
	types := make([]string, len(fn.Inputs))
	for i, p := range fn.Inputs {
		types[i] = p.Type
	}
	sig += strings.Join(types, ",") + ")"

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// encodeStatic encodes a single static ABI parameter value as a 32-byte word.
func encodeStatic(typ, val string) ([]byte, error) {
	switch {
	case typ == "address":
		b, err := hex.DecodeString(pad40(strings.TrimPrefix(val, "0x")))
		if err != nil {
			return nil, fmt.Errorf("invalid address: %s", val)
		}
		word := make([]byte, 32)
		copy(word[12:], b)
		return word, nil

	case strings.HasPrefix(typ, "uint") || strings.HasPrefix(typ, "int"):
		n := new(big.Int)
		if _, ok := n.SetString(val, 0); !ok {
			return nil, fmt.Errorf("invalid integer: %s", val)
		}
		return appendBigInt(nil, n), nil

	case typ == "bool":
		word := make([]byte, 32)
		if val == "true" || val == "1" {
			word[31] = 1
		}
		return word, nil

	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", typ)
	}
}

func pad40(s string) string {
	for len(s) < 40 {
		s = "0" + s
	}
	return s
}

// --- byte-level builders ---

// roundUp32 rounds n up to the next multiple of 32.
func roundUp32(n int) int {
	return (n + 31) / 32 * 32
}

// appendUint256 appends v as a 32-byte big-endian word.
func appendUint256(buf []byte, v uint64) []byte {
	word := make([]byte, 32)
	for i := 0; i < 8; i++ {
		word[31-i] = byte(v >> (8 * i))
	}
	return append(buf, word...)
}

// appendBigInt appends n as a 32-byte big-endian word.
func appendBigInt(buf []byte, n *big.Int) []byte {
	word := make([]byte, 32)
	n.FillBytes(word)
	return append(buf, word...)
}

// appendString appends a dynamic string/bytes value: length word followed by
// the data right-padded to a 32-byte boundary.
func appendString(buf []byte, data []byte) []byte {
	buf = appendUint256(buf, uint64(len(data)))
	padded := make([]byte, roundUp32(len(data)))
	copy(padded, data)
	return append(buf, padded...)
}

// --- ABI decoding ---

// decodeResult decodes the raw hex result into string values. A single
// address[] output expands into one string per element.
func decodeResult(fn *ABIEntry, hexData string) ([]string, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(hexData, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decoding hex result: %w", err)
	}

	if len(fn.Outputs) == 0 {
		return nil, nil
	}

	var results []string
	offset := 0

	for _, out := range fn.Outputs {
		if offset+32 > len(data) {
			results = append(results, "")
			continue
		}

		word := data[offset : offset+32]
		offset += 32

		if out.Type == "address[]" {
			addrs, err := decodeAddressArray(word, data)
			if err != nil {
				return nil, err
			}
			results = append(results, addrs...)
			continue
		}

		val, err := decodeWord(out.Type, word, data)
		if err != nil {
			results = append(results, "")
			continue
		}
		results = append(results, val)
	}

	return results, nil
}

func decodeWord(typ string, word []byte, fullData []byte) (string, error) {
	switch {
	case typ == "address":
		return "0x" + hex.EncodeToString(word[12:]), nil

	case strings.HasPrefix(typ, "uint") || strings.HasPrefix(typ, "int"):
		n := new(big.Int).SetBytes(word)
		return n.String(), nil

	case typ == "bool":
		if word[31] == 1 {
			return "true", nil
		}
		return "false", nil

	case typ == "string":
		// String uses an offset + length encoding.
		offsetVal := new(big.Int).SetBytes(word).Uint64()
		if offsetVal+32 > uint64(len(fullData)) {
			return "", nil
		}
		length := new(big.Int).SetBytes(fullData[offsetVal : offsetVal+32]).Uint64()
		start := offsetVal + 32
		if start+length > uint64(len(fullData)) {
			return "", nil
		}
		return string(fullData[start : start+length]), nil

	default:
		return "0x" + hex.EncodeToString(word), nil
	}
}

// decodeAddressArray decodes a dynamic address[] given its offset word.
func decodeAddressArray(word []byte, fullData []byte) ([]string, error) {
	offsetVal := new(big.Int).SetBytes(word).Uint64()
	if offsetVal+32 > uint64(len(fullData)) {
		return nil, fmt.Errorf("address[] offset out of range")
	}
	length := new(big.Int).SetBytes(fullData[offsetVal : offsetVal+32]).Uint64()
	start := offsetVal + 32
	if start+length*32 > uint64(len(fullData)) {
		return nil, fmt.Errorf("address[] truncated: %d elements", length)
	}

	addrs := make([]string, 0, length)
	for i := uint64(0); i < length; i++ {
		elem := fullData[start+i*32 : start+(i+1)*32]
		addrs = append(addrs, "0x"+hex.EncodeToString(elem[12:]))
	}
	return addrs, nil
}

// hexToBytes converts a hex string (with or without 0x) to bytes.
func hexToBytes(s string) []byte {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}
