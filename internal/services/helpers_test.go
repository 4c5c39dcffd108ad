package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/rehab-rewards-backend/internal/chain"
	"github.com/tbourn/rehab-rewards-backend/internal/domain"
	"github.com/tbourn/rehab-rewards-backend/internal/events"
	"github.com/tbourn/rehab-rewards-backend/internal/gemini"
	"github.com/tbourn/rehab-rewards-backend/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(repo.Models()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedPatient(t *testing.T, db *gorm.DB, name string) *domain.Patient {
	t.Helper()
	p := &domain.Patient{Name: name, WalletAddress: testWallet}
	if err := repo.CreatePatient(context.Background(), db, p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p
}

func seedDoctor(t *testing.T, db *gorm.DB) *domain.Doctor {
	t.Helper()
	d := &domain.Doctor{Name: "Dr. Rivera", License: "LIC-1", Specialization: "Physiotherapy"}
	if err := repo.CreateDoctor(context.Background(), db, d); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	return d
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func intp(v int) *int { return &v }

const testWallet = "0x1111111111111111111111111111111111111111"

// fakeAI records calls and replays canned responses in order.
type fakeAI struct {
	mu        sync.Mutex
	calls     int
	responses []fakeAnswer
}

type fakeAnswer struct {
	resp *gemini.Response
	err  error
}

func (f *fakeAI) GenerateContent(_ context.Context, _ string, _ gemini.Request) (*gemini.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if len(f.responses) == 0 {
		return nil, &gemini.APIError{StatusCode: 500, Message: "no canned response"}
	}
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i].resp, f.responses[i].err
}

func (f *fakeAI) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func textResponse(t *testing.T, text string) *gemini.Response {
	t.Helper()
	return decodeResponse(t, fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text))
}

func imageResponse(t *testing.T, data []byte) *gemini.Response {
	t.Helper()
	b64 := base64.StdEncoding.EncodeToString(data)
	return decodeResponse(t, fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":"here"},{"inlineData":{"mimeType":"image/png","data":%q}}]}}]}`, b64))
}

func decodeResponse(t *testing.T, raw string) *gemini.Response {
	t.Helper()
	var r gemini.Response
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("decode canned response: %v", err)
	}
	return &r
}

// fakeMinter counts mints and either fails or returns a fixed receipt.
type fakeMinter struct {
	mu     sync.Mutex
	calls  int
	last   chain.MintRequest
	err    error
	signer string
}

func (m *fakeMinter) Mint(_ context.Context, req chain.MintRequest) (*chain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	id := "42"
	return &chain.Receipt{TxHash: "0xabc123", TokenID: &id, To: req.To, BlockNumber: 7, Signer: m.Signer()}, nil
}

func (m *fakeMinter) Signer() string {
	if m.signer == "" {
		return chain.SignerAdmin
	}
	return m.signer
}

// fakeStore keeps objects in memory.
type fakeStore struct {
	mu   sync.Mutex
	objs map[string][]byte
	err  error
}

func (s *fakeStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	if s.objs == nil {
		s.objs = map[string][]byte{}
	}
	s.objs[key] = data
	return "https://cdn.example.com/" + key, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []events.MintedEvent
	err    error
}

func (p *fakePublisher) PublishMinted(_ context.Context, ev events.MintedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }
