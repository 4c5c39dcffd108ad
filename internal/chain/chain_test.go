package chain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tbourn/rehab-rewards-backend/internal/config"
	"github.com/tbourn/rehab-rewards-backend/internal/domain"
)

const (
	testContract  = "0x00000000000000000000000000000000000000C0"
	testRecipient = "0x1111111111111111111111111111111111111111"
)

// fakeBackend accepts every transaction and mines it at block 7 with a
// Transfer event carrying token id 42.
type fakeBackend struct {
	sent   []*types.Transaction
	status uint64
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) { return 3, nil }
func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error)            { return big.NewInt(2), nil }
func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: big.NewInt(10)}, nil
}
func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) { return 100000, nil }
func (f *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{1}, nil
}
func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}
func (f *fakeBackend) TransactionReceipt(_ context.Context, h common.Hash) (*types.Receipt, error) {
	if len(f.sent) == 0 {
		return nil, ethereum.NotFound
	}
	transfer := &types.Log{Topics: []common.Hash{
		nftABI.Events["Transfer"].ID,
		{},
		common.BytesToHash(common.HexToAddress(testRecipient).Bytes()),
		common.BigToHash(big.NewInt(42)),
	}}
	return &types.Receipt{TxHash: h, Status: f.status, BlockNumber: big.NewInt(7), Logs: []*types.Log{transfer}}, nil
}

func fakeDialer(b *fakeBackend) Dialer {
	return func(context.Context, string) (Backend, func(), error) { return b, func() {}, nil }
}

func testChainConfig(t *testing.T) config.ChainConfig {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return config.ChainConfig{
		RPCURL:          "http://rpc.invalid",
		ChainID:         80002,
		AdminPrivateKey: hex.EncodeToString(crypto.FromECDSA(key)),
		ContractAddress: testContract,
	}
}

func TestTokenURI_RoundTrip(t *testing.T) {
	m := Metadata{Name: "Push-ups Achievement", Image: "http://x/generated-nfts/a.png",
		Attributes: []domain.NFTAttribute{{TraitType: "Rarity", Value: "Epic"}}}
	uri, err := TokenURI(m)
	if err != nil || !strings.HasPrefix(uri, "data:application/json;base64,") {
		t.Fatalf("TokenURI = %q, %v", uri, err)
	}
	got, err := ParseTokenURI(uri)
	if err != nil || got.Name != m.Name || got.Attributes[0].Value != "Epic" {
		t.Fatalf("ParseTokenURI = %+v, %v", got, err)
	}
	if _, err := ParseTokenURI("ipfs://x"); err == nil {
		t.Fatalf("expected error for non data uri")
	}
}

func TestEncodeDecodeMintTo(t *testing.T) {
	if _, err := EncodeMintTo("nope", "u"); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	data, err := EncodeMintTo(testRecipient, "uri")
	if err != nil {
		t.Fatalf("EncodeMintTo: %v", err)
	}
	to, uri, err := DecodeMintTo(data)
	if err != nil || !strings.EqualFold(to, testRecipient) || uri != "uri" {
		t.Fatalf("DecodeMintTo = %s %s %v", to, uri, err)
	}
	if _, _, err := DecodeMintTo([]byte{1, 2, 3, 4, 5}); !errors.Is(err, ErrInvalidSignedTx) {
		t.Fatalf("expected ErrInvalidSignedTx, got %v", err)
	}
}

func TestAdminMinter_MissingConfig(t *testing.T) {
	m := NewAdminMinter(config.ChainConfig{}, nil)
	_, err := m.Mint(context.Background(), MintRequest{To: testRecipient})
	if !errors.Is(err, config.ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
}

func TestAdminMinter_SignsSendsAndReadsTokenID(t *testing.T) {
	cfg := testChainConfig(t)
	fb := &fakeBackend{status: types.ReceiptStatusSuccessful}
	m := NewAdminMinter(cfg, fakeDialer(fb))

	rcpt, err := m.Mint(context.Background(), MintRequest{To: testRecipient, TokenURI: "data:x"})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if len(fb.sent) != 1 {
		t.Fatalf("expected one transaction sent, got %d", len(fb.sent))
	}
	tx := fb.sent[0]
	if tx.Nonce() != 3 || *tx.To() != common.HexToAddress(testContract) || tx.ChainId().Int64() != 80002 {
		t.Fatalf("unexpected tx: nonce=%d to=%s chain=%s", tx.Nonce(), tx.To().Hex(), tx.ChainId())
	}
	if rcpt.TxHash != tx.Hash().Hex() || rcpt.TokenID == nil || *rcpt.TokenID != "42" || rcpt.BlockNumber != 7 {
		t.Fatalf("unexpected receipt: %+v", rcpt)
	}
	if m.Signer() != SignerAdmin || rcpt.Signer != SignerAdmin {
		t.Fatalf("unexpected signer %q", rcpt.Signer)
	}
}

func TestAdminMinter_Reverted(t *testing.T) {
	fb := &fakeBackend{status: types.ReceiptStatusFailed}
	_, err := NewAdminMinter(testChainConfig(t), fakeDialer(fb)).Mint(context.Background(), MintRequest{To: testRecipient})
	if !errors.Is(err, ErrReverted) {
		t.Fatalf("expected ErrReverted, got %v", err)
	}
}

func signedMint(t *testing.T, contract string) string {
	t.Helper()
	key, _ := crypto.GenerateKey()
	data, err := EncodeMintTo(testRecipient, "uri")
	if err != nil {
		t.Fatalf("EncodeMintTo: %v", err)
	}
	to := common.HexToAddress(contract)
	chainID := big.NewInt(80002)
	tx, err := types.SignTx(types.NewTx(&types.DynamicFeeTx{
		ChainID: chainID, Nonce: 1, GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(2), Gas: 90000, To: &to, Data: data,
	}), types.LatestSignerForChainID(chainID), key)
	if err != nil {
		t.Fatalf("SignTx: %v", err)
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	return "0x" + hex.EncodeToString(raw)
}

func TestDecodeSignedMint(t *testing.T) {
	sm, err := DecodeSignedMint(signedMint(t, testContract), testContract)
	if err != nil {
		t.Fatalf("DecodeSignedMint: %v", err)
	}
	if sm.Tx == nil || !strings.EqualFold(sm.To, testRecipient) || sm.TokenURI != "uri" {
		t.Fatalf("unexpected decode: %+v", sm)
	}
	if _, err := DecodeSignedMint(signedMint(t, testRecipient), testContract); !errors.Is(err, ErrWrongContract) {
		t.Fatalf("expected ErrWrongContract, got %v", err)
	}
	if _, err := DecodeSignedMint("  ", testContract); !errors.Is(err, ErrInvalidSignedTx) {
		t.Fatalf("expected ErrInvalidSignedTx, got %v", err)
	}
}

func TestWalletMinter_RelaysSignedTx(t *testing.T) {
	cfg := testChainConfig(t)
	cfg.AdminPrivateKey = ""
	fb := &fakeBackend{status: types.ReceiptStatusSuccessful}
	m := NewWalletMinter(cfg, fakeDialer(fb))

	rcpt, err := m.Mint(context.Background(), MintRequest{SignedTx: signedMint(t, testContract)})
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if !strings.EqualFold(rcpt.To, testRecipient) || rcpt.Signer != SignerWallet || len(fb.sent) != 1 {
		t.Fatalf("unexpected receipt: %+v", rcpt)
	}
}

func TestWalletMinter_RejectsOtherContractAndGarbage(t *testing.T) {
	cfg := testChainConfig(t)
	fb := &fakeBackend{status: types.ReceiptStatusSuccessful}
	m := NewWalletMinter(cfg, fakeDialer(fb))

	if _, err := m.Mint(context.Background(), MintRequest{SignedTx: signedMint(t, testRecipient)}); !errors.Is(err, ErrWrongContract) {
		t.Fatalf("expected ErrWrongContract, got %v", err)
	}
	if _, err := m.Mint(context.Background(), MintRequest{SignedTx: "0xzz"}); !errors.Is(err, ErrInvalidSignedTx) {
		t.Fatalf("expected ErrInvalidSignedTx, got %v", err)
	}
	if len(fb.sent) != 0 {
		t.Fatalf("nothing should be broadcast, got %d", len(fb.sent))
	}
}

func TestLedger_MintChainAndVerify(t *testing.T) {
	l, err := OpenMemLedger()
	if err != nil {
		t.Fatalf("OpenMemLedger: %v", err)
	}
	defer l.Close()
	ctx := context.Background()

	if _, err := l.Mint(ctx, MintRequest{To: "bad"}); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}

	r1, err := l.Mint(ctx, MintRequest{To: testRecipient, TokenURI: "a"})
	if err != nil {
		t.Fatalf("Mint 1: %v", err)
	}
	r2, err := l.Mint(ctx, MintRequest{To: testRecipient, TokenURI: "b"})
	if err != nil {
		t.Fatalf("Mint 2: %v", err)
	}
	if *r1.TokenID != "1" || *r2.TokenID != "2" || r1.TxHash == r2.TxHash {
		t.Fatalf("unexpected receipts: %+v %+v", r1, r2)
	}
	if h, _ := l.Height(); h != 2 {
		t.Fatalf("expected height 2, got %d", h)
	}
	b2, err := l.BlockByTx(r2.TxHash)
	if err != nil || b2.PrevHash != strings.TrimPrefix(r1.TxHash, "0x") {
		t.Fatalf("block 2 does not link to block 1: %+v %v", b2, err)
	}
	if err := l.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	// Tamper with block 1 and expect the chain check to fail.
	b1, _ := l.Block(1)
	b1.TokenURI = "forged"
	data, _ := json.Marshal(b1)
	if err := l.db.Put([]byte("block_1"), data, nil); err != nil {
		t.Fatalf("tamper: %v", err)
	}
	if err := l.Verify(); !errors.Is(err, ErrLedgerCorrupt) {
		t.Fatalf("expected ErrLedgerCorrupt, got %v", err)
	}
}

func TestOpenLedger_OnDisk(t *testing.T) {
	dir := t.TempDir()
	l, err := OpenLedger(dir)
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	if _, err := l.Mint(context.Background(), MintRequest{To: testRecipient}); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	_ = l.Close()

	l2, err := OpenLedger(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l2.Close()
	if h, _ := l2.Height(); h != 1 {
		t.Fatalf("expected persisted height 1, got %d", h)
	}
}
