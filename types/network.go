package types

import "fmt"

// Network identifies the Solana cluster a payment settles on.
//
// Every outbound payment-intent request must carry a network explicitly.
// Relying on a server-side default opens a cross-network replay window, so
// an empty network is rejected client-side before any request is made.
type Network string

const (
	NetworkSolanaDevnet  Network = "solana:devnet"
	NetworkSolanaMainnet Network = "solana:mainnet"
)

func (n Network) String() string {
	return string(n)
}

func (n Network) IsTestnet() bool {
	return n == NetworkSolanaDevnet
}

// Validate checks that the network is one of the supported identifiers.
func (n Network) Validate() error {
	switch n {
	case NetworkSolanaDevnet, NetworkSolanaMainnet:
		return nil
	case "":
		return &SolPayError{
			Code:    ErrUnsupportedNetwork,
			Message: "network is required: omitting it permits cross-network replay",
		}
	default:
		return &SolPayError{
			Code:    ErrUnsupportedNetwork,
			Message: fmt.Sprintf("unsupported network: %s", n),
		}
	}
}

// SupportedNetworks lists the networks this SDK can create intents on.
func SupportedNetworks() []Network {
	return []Network{NetworkSolanaDevnet, NetworkSolanaMainnet}
}
