package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kata/sweetshop/internal/core/domain"
	"github.com/kata/sweetshop/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubSweetRepo struct {
	mu     sync.Mutex
	sweets map[string]*domain.Sweet
	seq    int
	// lastPatch is the patch most recently passed to Update.
	lastPatch domain.SweetPatch
}

func newStubSweetRepo() *stubSweetRepo {
	return &stubSweetRepo{sweets: make(map[string]*domain.Sweet)}
}

func cloneSweet(s *domain.Sweet) *domain.Sweet {
	c := *s
	return &c
}

func (r *stubSweetRepo) Create(_ context.Context, s *domain.Sweet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s.ID = fmt.Sprintf("sweet-%03d", r.seq)
	r.sweets[s.ID] = cloneSweet(s)
	return nil
}

func (r *stubSweetRepo) FindByID(_ context.Context, id string) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sweets[id]; ok {
		return cloneSweet(s), nil
	}
	return nil, domain.ErrSweetNotFound
}

func (r *stubSweetRepo) List(_ context.Context, f ports.SweetFilter) ([]*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Sweet{}
	for _, s := range r.sweets {
		if f.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Category != "" && s.Category != f.Category {
			continue
		}
		if f.MinPrice != nil && s.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && s.Price > *f.MaxPrice {
			continue
		}
		out = append(out, cloneSweet(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubSweetRepo) Update(_ context.Context, id string, p domain.SweetPatch, at time.Time) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	r.lastPatch = p
	p.Apply(s)
	s.UpdatedAt = at
	return cloneSweet(s), nil
}

func (r *stubSweetRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sweets[id]; !ok {
		return domain.ErrSweetNotFound
	}
	delete(r.sweets, id)
	return nil
}

func (r *stubSweetRepo) DecrementStock(_ context.Context, id string, qty int, at time.Time) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	if s.Quantity < qty {
		return nil, domain.ErrInsufficientStock
	}
	s.Quantity -= qty
	s.UpdatedAt = at
	return cloneSweet(s), nil
}

func (r *stubSweetRepo) IncrementStock(_ context.Context, id string, qty int, at time.Time) (*domain.Sweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	s.Quantity += qty
	s.UpdatedAt = at
	return cloneSweet(s), nil
}

type stubRecorder struct {
	mu   sync.Mutex
	recs []domain.StockMovement
}

func (r *stubRecorder) Enqueue(m domain.StockMovement) {
	r.mu.Lock()
	r.recs = append(r.recs, m)
	r.mu.Unlock()
}

type tagStripper struct{}

func (tagStripper) Sanitize(s string) string { return strings.ReplaceAll(s, "<b>", "") }

func float(v float64) *float64 { return &v }

func seedSweet(t *testing.T, svc *SweetService, name, cat string, price float64, qty int) *domain.Sweet {
	t.Helper()
	s, err := svc.Create(context.Background(), ports.SweetInput{Name: name, Category: cat, Price: price, Quantity: qty})
	if err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	return s
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestSweetService_CreateAndGet(t *testing.T) {
	svc := NewSweetService(newStubSweetRepo(), zerolog.Nop(), WithSanitizer(tagStripper{}))

	created, err := svc.Create(context.Background(), ports.SweetInput{
		Name:        "  Dark Chocolate ",
		Category:    "chocolate",
		Price:       2.5,
		Quantity:    50,
		Description: "<b>rich",
		ImageURL:    "/uploads/dark.png",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps, got %+v", created)
	}
	if created.Description != "rich" {
		t.Fatalf("expected sanitised description, got %q", created.Description)
	}

	got, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "Dark Chocolate" || got.Category != domain.CategoryChocolate || got.Price != 2.5 || got.Quantity != 50 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestSweetService_Create_Validation(t *testing.T) {
	svc := NewSweetService(newStubSweetRepo(), zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.SweetInput{
		Name: "X", Category: "vegetable", Price: -1, Quantity: -3, ImageURL: "ftp://x",
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 5 {
		t.Fatalf("expected 5 field errors, got %+v", verr.Fields)
	}
}

func TestSweetService_GetByID_NotFound(t *testing.T) {
	svc := NewSweetService(newStubSweetRepo(), zerolog.Nop())
	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound, got %v", err)
	}
}

func TestSweetService_Search_Conjunctive(t *testing.T) {
	svc := NewSweetService(newStubSweetRepo(), zerolog.Nop())
	seedSweet(t, svc, "Dark Chocolate", "chocolate", 3, 10)
	seedSweet(t, svc, "Milk Chocolate", "chocolate", 1.5, 10)
	seedSweet(t, svc, "Chocolate Cake", "cake", 12, 2)
	seedSweet(t, svc, "Gummy Bears", "candy", 2, 100)

	got, err := svc.Search(context.Background(), ports.SearchInput{
		Name: "CHOCOLATE", Category: "chocolate", MinPrice: float(2), MaxPrice: float(3),
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Dark Chocolate" {
		t.Fatalf("expected only Dark Chocolate, got %+v", got)
	}

	all, _ := svc.Search(context.Background(), ports.SearchInput{})
	if len(all) != 4 {
		t.Fatalf("empty search should return everything, got %d", len(all))
	}
}

func TestSweetService_Search_InvalidCategory(t *testing.T) {
	svc := NewSweetService(newStubSweetRepo(), zerolog.Nop())
	var verr *domain.ValidationError
	if _, err := svc.Search(context.Background(), ports.SearchInput{Category: "vegetable"}); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSweetService_Update_Partial(t *testing.T) {
	svc := NewSweetService(newStubSweetRepo(), zerolog.Nop())
	s := seedSweet(t, svc, "Toffee", "candy", 1, 5)

	price := 1.75
	updated, err := svc.Update(context.Background(), s.ID, domain.SweetPatch{Price: &price})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Price != 1.75 || updated.Name != "Toffee" || updated.Quantity != 5 {
		t.Fatalf("unexpected result: %+v", updated)
	}

	bad := "x"
	var verr *domain.ValidationError
	if _, err := svc.Update(context.Background(), s.ID, domain.SweetPatch{Name: &bad}); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "missing", domain.SweetPatch{Price: &price}); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound, got %v", err)
	}
}

func TestSweetService_Update_TrimsPersistedFields(t *testing.T) {
	repo := newStubSweetRepo()
	svc := NewSweetService(repo, zerolog.Nop())
	s := seedSweet(t, svc, "Fudge", "candy", 1, 5)

	name, img := "   Toffee   ", "  /uploads/a.png "
	updated, err := svc.Update(context.Background(), s.ID, domain.SweetPatch{Name: &name, ImageURL: &img})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	repo.mu.Lock()
	persisted := repo.lastPatch
	repo.mu.Unlock()
	if *persisted.Name != "Toffee" || *persisted.ImageURL != "/uploads/a.png" {
		t.Fatalf("persisted name=%q imageUrl=%q", *persisted.Name, *persisted.ImageURL)
	}
	if updated.Name != "Toffee" || updated.ImageURL != "/uploads/a.png" {
		t.Fatalf("unexpected result: %+v", updated)
	}
}

func TestSweetService_Delete(t *testing.T) {
	svc := NewSweetService(newStubSweetRepo(), zerolog.Nop())
	s := seedSweet(t, svc, "Toffee", "candy", 1, 5)

	if err := svc.Delete(context.Background(), s.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), s.ID); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound on second delete, got %v", err)
	}
}

func TestSweetService_Purchase(t *testing.T) {
	rec := &stubRecorder{}
	svc := NewSweetService(newStubSweetRepo(), zerolog.Nop(), WithMovementRecorder(rec))
	s := seedSweet(t, svc, "Dark Chocolate", "chocolate", 2.5, 50)

	if _, err := svc.Purchase(context.Background(), ports.StockInput{SweetID: s.ID, Quantity: 60}); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	after, _ := svc.GetByID(context.Background(), s.ID)
	if after.Quantity != 50 {
		t.Fatalf("stock changed after failed purchase: %d", after.Quantity)
	}

	got, err := svc.Purchase(context.Background(), ports.StockInput{SweetID: s.ID, Quantity: 10, ActorID: "user-1"})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if got.Quantity != 40 {
		t.Fatalf("expected 40 left, got %d", got.Quantity)
	}

	got, _ = svc.Purchase(context.Background(), ports.StockInput{SweetID: s.ID})
	if got.Quantity != 39 {
		t.Fatalf("default quantity should be 1, got %d left", got.Quantity)
	}

	if len(rec.recs) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(rec.recs))
	}
	if m := rec.recs[0]; m.Kind != domain.MovementPurchase || m.Quantity != 10 || m.Resulting != 40 || m.ActorID != "user-1" {
		t.Fatalf("unexpected movement: %+v", m)
	}
}

func TestSweetService_Purchase_ConcurrentNeverOversells(t *testing.T) {
	svc := NewSweetService(newStubSweetRepo(), zerolog.Nop())
	s := seedSweet(t, svc, "Fudge", "candy", 1, 25)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Purchase(context.Background(), ports.StockInput{SweetID: s.ID, Quantity: 1}); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	after, _ := svc.GetByID(context.Background(), s.ID)
	if ok != 25 || after.Quantity != 0 {
		t.Fatalf("expected 25 successes and empty stock, got %d successes and %d left", ok, after.Quantity)
	}
}

func TestSweetService_Restock(t *testing.T) {
	rec := &stubRecorder{}
	svc := NewSweetService(newStubSweetRepo(), zerolog.Nop(), WithMovementRecorder(rec))
	s := seedSweet(t, svc, "Fudge", "candy", 1, 5)

	got, err := svc.Restock(context.Background(), ports.StockInput{SweetID: s.ID, Quantity: 20})
	if err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if got.Quantity != 25 {
		t.Fatalf("expected 25, got %d", got.Quantity)
	}

	for _, q := range []int{0, -4} {
		if _, err := svc.Restock(context.Background(), ports.StockInput{SweetID: s.ID, Quantity: q}); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("quantity %d: expected ErrInvalidQuantity, got %v", q, err)
		}
	}
	if _, err := svc.Restock(context.Background(), ports.StockInput{SweetID: "missing", Quantity: 1}); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound, got %v", err)
	}
	if len(rec.recs) != 1 || rec.recs[0].Kind != domain.MovementRestock {
		t.Fatalf("expected a single restock movement, got %+v", rec.recs)
	}
}

type stubMovementRepo struct {
	inserted  []*domain.StockMovement
	insertErr error
}

func (r *stubMovementRepo) Insert(_ context.Context, m *domain.StockMovement) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, m)
	return nil
}

func (r *stubMovementRepo) ListBySweet(_ context.Context, id string, limit int) ([]*domain.StockMovement, error) {
	out := []*domain.StockMovement{}
	for i := len(r.inserted) - 1; i >= 0 && len(out) < limit; i-- {
		if r.inserted[i].SweetID == id {
			out = append(out, r.inserted[i])
		}
	}
	return out, nil
}

func TestSweetService_Movements(t *testing.T) {
	movements := &stubMovementRepo{}
	svc := NewSweetService(newStubSweetRepo(), zerolog.Nop(), WithMovementHistory(movements))
	s := seedSweet(t, svc, "Fudge", "candy", 1, 5)

	movements.inserted = append(movements.inserted,
		&domain.StockMovement{SweetID: s.ID, Kind: domain.MovementRestock, Quantity: 1},
		&domain.StockMovement{SweetID: s.ID, Kind: domain.MovementPurchase, Quantity: 2},
	)

	got, err := svc.Movements(context.Background(), s.ID, 0)
	if err != nil {
		t.Fatalf("movements failed: %v", err)
	}
	if len(got) != 2 || got[0].Kind != domain.MovementPurchase {
		t.Fatalf("expected newest first, got %+v", got)
	}

	if _, err := svc.Movements(context.Background(), "missing", 10); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound, got %v", err)
	}
}
