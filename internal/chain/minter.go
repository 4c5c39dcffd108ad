// Package chain mints achievement NFTs. Three signers share the Minter
// interface: the administrator key (server-signed EVM transaction), a
// client wallet (pre-signed raw transaction relayed by the server), and a
// local hash-chained ledger used when no RPC endpoint is configured.
package chain

import (
	"context"
	"errors"
)

// Signer names, also used as metric labels.
const (
	SignerAdmin  = "admin"
	SignerWallet = "wallet"
	SignerLedger = "ledger"
)

var (
	// ErrInvalidAddress is returned for a recipient that is not a hex address.
	ErrInvalidAddress = errors.New("invalid wallet address")
	// ErrInvalidSignedTx is returned when a wallet transaction cannot be decoded.
	ErrInvalidSignedTx = errors.New("invalid signed transaction")
	// ErrWrongContract is returned when a wallet transaction targets another contract.
	ErrWrongContract = errors.New("transaction does not target the NFT contract")
	// ErrReverted is returned when the mint transaction was mined but failed.
	ErrReverted = errors.New("mint transaction reverted")
)

// MintRequest is one mint. SignedTx is only read by the wallet signer.
type MintRequest struct {
	To       string
	TokenURI string
	SignedTx string
}

// Receipt identifies a confirmed mint.
type Receipt struct {
	TxHash      string
	TokenID     *string
	To          string
	BlockNumber uint64
	Signer      string
}

// Minter mints one token and blocks until it is confirmed.
type Minter interface {
	Mint(ctx context.Context, req MintRequest) (*Receipt, error)
	Signer() string
}
