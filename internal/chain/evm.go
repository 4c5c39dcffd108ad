package chain

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/tbourn/rehab-rewards-backend/internal/config"
)

const mintABI = `[
 {"type":"function","name":"mintTo","stateMutability":"nonpayable",
  "inputs":[{"name":"to","type":"address"},{"name":"uri","type":"string"}],
  "outputs":[{"name":"","type":"uint256"}]},
 {"type":"event","name":"Transfer","anonymous":false,
  "inputs":[{"name":"from","type":"address","indexed":true},
            {"name":"to","type":"address","indexed":true},
            {"name":"tokenId","type":"uint256","indexed":true}]}
]`

var nftABI = mustParseABI(mintABI)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Backend is the subset of ethclient.Client used for minting.
type Backend interface {
	bind.DeployBackend
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Dialer opens a Backend for an RPC URL. The returned func releases it.
type Dialer func(ctx context.Context, rpcURL string) (Backend, func(), error)

// DialRPC is the default Dialer backed by ethclient.
func DialRPC(ctx context.Context, rpcURL string) (Backend, func(), error) {
	c, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

// ValidAddress reports whether s is a 20-byte hex address.
func ValidAddress(s string) bool { return common.IsHexAddress(s) }

// EncodeMintTo returns calldata for mintTo(to, uri).
func EncodeMintTo(to, uri string) ([]byte, error) {
	if !common.IsHexAddress(to) {
		return nil, ErrInvalidAddress
	}
	return nftABI.Pack("mintTo", common.HexToAddress(to), uri)
}

// DecodeMintTo extracts (to, uri) from mintTo calldata.
func DecodeMintTo(data []byte) (string, string, error) {
	m := nftABI.Methods["mintTo"]
	if len(data) < 4 || !bytes.Equal(data[:4], m.ID) {
		return "", "", fmt.Errorf("%w: not a mintTo call", ErrInvalidSignedTx)
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil || len(args) != 2 {
		return "", "", fmt.Errorf("%w: bad mintTo arguments", ErrInvalidSignedTx)
	}
	to, ok1 := args[0].(common.Address)
	uri, ok2 := args[1].(string)
	if !ok1 || !ok2 {
		return "", "", fmt.Errorf("%w: bad mintTo arguments", ErrInvalidSignedTx)
	}
	return to.Hex(), uri, nil
}

// AdminMinter signs mintTo with the administrator key.
type AdminMinter struct {
	cfg  config.ChainConfig
	dial Dialer
}

// NewAdminMinter returns a minter for cfg. A nil dial uses DialRPC.
func NewAdminMinter(cfg config.ChainConfig, dial Dialer) *AdminMinter {
	if dial == nil {
		dial = DialRPC
	}
	return &AdminMinter{cfg: cfg, dial: dial}
}

// Signer implements Minter.
func (m *AdminMinter) Signer() string { return SignerAdmin }

// Mint builds, signs and broadcasts an EIP-1559 mintTo and waits for its receipt.
func (m *AdminMinter) Mint(ctx context.Context, req MintRequest) (*Receipt, error) {
	if err := m.cfg.RequireAdminMint(); err != nil {
		return nil, err
	}
	key, err := parseKey(m.cfg.AdminPrivateKey)
	if err != nil {
		return nil, err
	}
	data, err := EncodeMintTo(req.To, req.TokenURI)
	if err != nil {
		return nil, err
	}

	backend, release, err := m.dial(ctx, m.cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	defer release()

	from := crypto.PubkeyToAddress(key.PublicKey)
	contract := common.HexToAddress(m.cfg.ContractAddress)

	nonce, err := backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	tip, err := backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas tip: %w", err)
	}
	head, err := backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(baseFee(head), big.NewInt(2)))
	gas, err := backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &contract, Data: data})
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}

	chainID := big.NewInt(m.cfg.ChainID)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas * 12 / 10,
		To:        &contract,
		Data:      data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return sendAndWait(ctx, backend, signed, req.To, SignerAdmin)
}

// WalletMinter relays a transaction already signed by the patient's wallet.
type WalletMinter struct {
	cfg  config.ChainConfig
	dial Dialer
}

// NewWalletMinter returns a relay for cfg. A nil dial uses DialRPC.
func NewWalletMinter(cfg config.ChainConfig, dial Dialer) *WalletMinter {
	if dial == nil {
		dial = DialRPC
	}
	return &WalletMinter{cfg: cfg, dial: dial}
}

// Signer implements Minter.
func (m *WalletMinter) Signer() string { return SignerWallet }

// Mint decodes req.SignedTx, checks it calls mintTo on the configured
// contract, broadcasts it and waits for the receipt. The recipient is taken
// from the calldata; req.To is ignored.
func (m *WalletMinter) Mint(ctx context.Context, req MintRequest) (*Receipt, error) {
	if err := m.cfg.RequireBroadcast(); err != nil {
		return nil, err
	}
	sm, err := DecodeSignedMint(req.SignedTx, m.cfg.ContractAddress)
	if err != nil {
		return nil, err
	}
	if _, err := types.Sender(types.LatestSignerForChainID(big.NewInt(m.cfg.ChainID)), sm.Tx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignedTx, err)
	}

	backend, release, err := m.dial(ctx, m.cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	defer release()
	return sendAndWait(ctx, backend, sm.Tx, sm.To, SignerWallet)
}

// SignedMint is a decoded wallet-signed mintTo transaction.
type SignedMint struct {
	Tx       *types.Transaction
	To       string
	TokenURI string
}

// DecodeSignedMint parses a hex raw transaction, validates its target and
// extracts the mintTo arguments.
func DecodeSignedMint(rawHex, contract string) (*SignedMint, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(rawHex), "0x"))
	if err != nil || len(raw) == 0 {
		return nil, ErrInvalidSignedTx
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignedTx, err)
	}
	if tx.To() == nil || *tx.To() != common.HexToAddress(contract) {
		return nil, ErrWrongContract
	}
	to, uri, err := DecodeMintTo(tx.Data())
	if err != nil {
		return nil, err
	}
	return &SignedMint{Tx: tx, To: to, TokenURI: uri}, nil
}

func sendAndWait(ctx context.Context, b Backend, tx *types.Transaction, to, signer string) (*Receipt, error) {
	if err := b.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	rcpt, err := bind.WaitMined(ctx, b, tx)
	if err != nil {
		return nil, fmt.Errorf("wait mined %s: %w", tx.Hash().Hex(), err)
	}
	if rcpt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s", ErrReverted, tx.Hash().Hex())
	}
	out := &Receipt{
		TxHash:  tx.Hash().Hex(),
		TokenID: tokenIDFromLogs(rcpt.Logs),
		To:      common.HexToAddress(to).Hex(),
		Signer:  signer,
	}
	if rcpt.BlockNumber != nil {
		out.BlockNumber = rcpt.BlockNumber.Uint64()
	}
	return out, nil
}

// tokenIDFromLogs reads the token id from the first ERC-721 Transfer event.
func tokenIDFromLogs(logs []*types.Log) *string {
	topic := nftABI.Events["Transfer"].ID
	for _, l := range logs {
		if l == nil || len(l.Topics) != 4 || l.Topics[0] != topic {
			continue
		}
		id := l.Topics[3].Big().String()
		return &id
	}
	return nil
}

func parseKey(s string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse ADMIN_PRIVATE_KEY: %w", err)
	}
	return key, nil
}

func baseFee(h *types.Header) *big.Int {
	if h == nil || h.BaseFee == nil {
		return big.NewInt(0)
	}
	return h.BaseFee
}
