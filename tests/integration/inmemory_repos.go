package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return fmt.Errorf("username already exists")
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *inMemoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) count() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users))
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet // keyed by wallet ID
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[w.ID] = w
	return nil
}

func (r *inMemoryWalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w := r.findByUserLocked(userID)
	if w == nil {
		return nil, nil
	}
	// Return a snapshot, matching the row-scan semantics of the real store.
	copied := *w
	return &copied, nil
}

func (r *inMemoryWalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64, salesDelta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.Balance = balance
	w.LifetimeSales += salesDelta
	w.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryWalletRepo) Credit(ctx context.Context, userID uuid.UUID, amount int64) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.findByUserLocked(userID)
	if w == nil {
		return nil, nil
	}
	w.Balance += amount
	w.UpdatedAt = time.Now().UTC()
	copied := *w
	return &copied, nil
}

func (r *inMemoryWalletRepo) findByUserLocked(userID uuid.UUID) *domain.Wallet {
	for _, w := range r.wallets {
		if w.UserID == userID {
			return w
		}
	}
	return nil
}

// --- In-Memory Artwork Repo ---

type inMemoryArtworkRepo struct {
	mu       sync.RWMutex
	artworks map[uuid.UUID]*domain.Artwork
}

func newInMemoryArtworkRepo() *inMemoryArtworkRepo {
	return &inMemoryArtworkRepo{artworks: make(map[uuid.UUID]*domain.Artwork)}
}

func (r *inMemoryArtworkRepo) Create(ctx context.Context, a *domain.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artworks[a.ID] = a
	return nil
}

func (r *inMemoryArtworkRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Artwork, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.artworks[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *inMemoryArtworkRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Artwork, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryArtworkRepo) List(ctx context.Context, filter ports.ArtworkFilter) ([]*domain.Artwork, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Artwork
	for _, a := range r.artworks {
		if filter.OwnerID != nil && a.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.ForSale != nil && a.IsForSale != *filter.ForSale {
			continue
		}
		if filter.Auction != nil && a.IsAuction != *filter.Auction {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *inMemoryArtworkRepo) UpdateListing(ctx context.Context, a *domain.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.artworks[a.ID]
	if !ok {
		return fmt.Errorf("artwork not found")
	}
	stored.Price = a.Price
	stored.IsForSale = a.IsForSale
	stored.IsAuction = a.IsAuction
	stored.AuctionEndTime = a.AuctionEndTime
	stored.MinimumBid = a.MinimumBid
	stored.Status = a.Status
	stored.UpdatedAt = a.UpdatedAt
	return nil
}

func (r *inMemoryArtworkRepo) TransferOwnership(ctx context.Context, tx pgx.Tx, artworkID, newOwnerID uuid.UUID, status domain.ArtworkStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.artworks[artworkID]
	if !ok {
		return fmt.Errorf("artwork not found")
	}
	a.OwnerID = newOwnerID
	a.Status = status
	a.IsForSale = false
	a.IsAuction = false
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryArtworkRepo) SetStatus(ctx context.Context, tx pgx.Tx, artworkID uuid.UUID, status domain.ArtworkStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.artworks[artworkID]
	if !ok {
		return fmt.Errorf("artwork not found")
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryArtworkRepo) ListExpiredAuctions(ctx context.Context, now time.Time, limit int) ([]*domain.Artwork, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Artwork
	for _, a := range r.artworks {
		if a.Status == domain.ArtworkStatusPublished && a.AuctionExpired(now) {
			copied := *a
			out = append(out, &copied)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// --- In-Memory Bid Repo ---

type inMemoryBidRepo struct {
	mu   sync.RWMutex
	bids []*domain.Bid
}

func newInMemoryBidRepo() *inMemoryBidRepo {
	return &inMemoryBidRepo{}
}

func (r *inMemoryBidRepo) Insert(ctx context.Context, tx pgx.Tx, b *domain.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *b
	r.bids = append(r.bids, &copied)
	return nil
}

func (r *inMemoryBidRepo) GetWinningForUpdate(ctx context.Context, tx pgx.Tx, artworkID uuid.UUID) (*domain.Bid, error) {
	return r.GetWinning(ctx, artworkID)
}

func (r *inMemoryBidRepo) GetWinning(ctx context.Context, artworkID uuid.UUID) (*domain.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bids {
		if b.ArtworkID == artworkID && b.IsWinning {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *inMemoryBidRepo) ClearWinning(ctx context.Context, tx pgx.Tx, artworkID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bids {
		if b.ArtworkID == artworkID {
			b.IsWinning = false
		}
	}
	return nil
}

func (r *inMemoryBidRepo) ListByArtwork(ctx context.Context, artworkID uuid.UUID, limit int) ([]*domain.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Bid
	for i := len(r.bids) - 1; i >= 0; i-- {
		if r.bids[i].ArtworkID != artworkID {
			continue
		}
		copied := *r.bids[i]
		out = append(out, &copied)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu   sync.RWMutex
	txns []*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *t
	r.txns = append(r.txns, &copied)
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.txns {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, filter ports.TransactionFilter) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Transaction
	for i := len(r.txns) - 1; i >= 0; i-- {
		t := r.txns[i]
		if filter.UserID != nil && t.BuyerID != *filter.UserID && t.SellerID != *filter.UserID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *inMemoryTransactionRepo) GetStats(ctx context.Context) (*ports.MarketplaceStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := &ports.MarketplaceStats{}
	for _, t := range r.txns {
		if t.Status != domain.TransactionStatusCompleted {
			continue
		}
		s.TotalSales++
		s.TotalVolume += t.Amount
		s.TotalFees += t.PlatformFee
	}
	return s, nil
}

// --- In-Memory Notification Repo ---

type inMemoryNotificationRepo struct {
	mu            sync.RWMutex
	notifications []*domain.Notification
}

func newInMemoryNotificationRepo() *inMemoryNotificationRepo {
	return &inMemoryNotificationRepo{}
}

func (r *inMemoryNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *n
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC()
	}
	r.notifications = append(r.notifications, &copied)
	return nil
}

func (r *inMemoryNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		n := r.notifications[i]
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		copied := *n
		out = append(out, &copied)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *inMemoryNotificationRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == notificationID && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *inMemoryNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *inMemoryNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// --- In-Memory Generation Task Repo ---

type inMemoryGenerationTaskRepo struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.GenerationTask
}

func newInMemoryGenerationTaskRepo() *inMemoryGenerationTaskRepo {
	return &inMemoryGenerationTaskRepo{tasks: make(map[uuid.UUID]*domain.GenerationTask)}
}

func (r *inMemoryGenerationTaskRepo) Create(ctx context.Context, t *domain.GenerationTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *t
	r.tasks[t.ID] = &copied
	return nil
}

func (r *inMemoryGenerationTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (r *inMemoryGenerationTaskRepo) Update(ctx context.Context, t *domain.GenerationTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; !ok {
		return fmt.Errorf("generation task not found")
	}
	copied := *t
	r.tasks[t.ID] = &copied
	return nil
}

func (r *inMemoryGenerationTaskRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.GenerationTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.GenerationTask
	for _, t := range r.tasks {
		if t.UserID != userID {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
