package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// LedgerBlock is one mint recorded on the local ledger.
type LedgerBlock struct {
	Index     uint64 `json:"index"`
	PrevHash  string `json:"prev_hash"`
	Timestamp string `json:"timestamp"`
	To        string `json:"to"`
	TokenURI  string `json:"token_uri"`
	Hash      string `json:"hash"`
}

// ErrLedgerCorrupt is returned by Verify when the hash chain is broken.
var ErrLedgerCorrupt = errors.New("ledger hash chain broken")

const heightKey = "height_latest"

var zeroHash = strings.Repeat("0", 64)

// Ledger is a hash-chained append-only mint log in LevelDB.
// Each block is stored twice: "block_<index>" and "hash_<hash>".
type Ledger struct {
	mu  sync.Mutex
	db  *leveldb.DB
	now func() time.Time
}

// OpenLedger opens or creates the ledger directory at path.
func OpenLedger(path string) (*Ledger, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	return &Ledger{db: db, now: time.Now}, nil
}

// OpenMemLedger returns a ledger backed by memory storage.
func OpenMemLedger() (*Ledger, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &Ledger{db: db, now: time.Now}, nil
}

// Close releases the underlying database.
func (l *Ledger) Close() error { return l.db.Close() }

// Signer implements Minter.
func (l *Ledger) Signer() string { return SignerLedger }

// Mint appends a block and returns its hash as the transaction hash and its
// index as the token id.
func (l *Ledger) Mint(ctx context.Context, req MintRequest) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ValidAddress(req.To) {
		return nil, ErrInvalidAddress
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	h, err := l.height()
	if err != nil {
		return nil, err
	}
	prev := zeroHash
	if h > 0 {
		last, err := l.Block(h)
		if err != nil {
			return nil, err
		}
		prev = last.Hash
	}

	b := LedgerBlock{
		Index:     h + 1,
		PrevHash:  prev,
		Timestamp: l.now().UTC().Format(time.RFC3339Nano),
		To:        req.To,
		TokenURI:  req.TokenURI,
	}
	b.Hash = blockHash(b)

	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	batch := new(leveldb.Batch)
	batch.Put([]byte(fmt.Sprintf("block_%d", b.Index)), data)
	batch.Put([]byte("hash_"+b.Hash), data)
	batch.Put([]byte(heightKey), []byte(strconv.FormatUint(b.Index, 10)))
	if err := l.db.Write(batch, nil); err != nil {
		return nil, fmt.Errorf("ledger write: %w", err)
	}

	tokenID := strconv.FormatUint(b.Index, 10)
	return &Receipt{
		TxHash:      "0x" + b.Hash,
		TokenID:     &tokenID,
		To:          req.To,
		BlockNumber: b.Index,
		Signer:      SignerLedger,
	}, nil
}

// Height returns the index of the last block, 0 when empty.
func (l *Ledger) Height() (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.height()
}

func (l *Ledger) height() (uint64, error) {
	v, err := l.db.Get([]byte(heightKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(string(v), 10, 64)
}

// Block returns the block at index.
func (l *Ledger) Block(index uint64) (LedgerBlock, error) {
	return l.get(fmt.Sprintf("block_%d", index))
}

// BlockByTx returns the block for a "0x"-prefixed transaction hash.
func (l *Ledger) BlockByTx(txHash string) (LedgerBlock, error) {
	return l.get("hash_" + strings.TrimPrefix(txHash, "0x"))
}

func (l *Ledger) get(key string) (LedgerBlock, error) {
	var b LedgerBlock
	data, err := l.db.Get([]byte(key), nil)
	if err != nil {
		return b, err
	}
	err = json.Unmarshal(data, &b)
	return b, err
}

// Verify walks the chain from the first block and checks every link.
func (l *Ledger) Verify() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, err := l.height()
	if err != nil {
		return err
	}
	prev := zeroHash
	for i := uint64(1); i <= h; i++ {
		b, err := l.Block(i)
		if err != nil {
			return fmt.Errorf("load block_%d: %w", i, err)
		}
		if b.PrevHash != prev || blockHash(b) != b.Hash {
			return fmt.Errorf("%w at block %d", ErrLedgerCorrupt, i)
		}
		prev = b.Hash
	}
	return nil
}

func blockHash(b LedgerBlock) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s|%s|%s", b.Index, b.PrevHash, b.Timestamp, b.To, b.TokenURI)))
	return hex.EncodeToString(sum[:])
}
