package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/types"
)

// DefaultPoolSize is the number of connections a pool hands out when no
// size is given.
const DefaultPoolSize = 16

var (
	ErrPoolClosed   = errors.New("ledger: pool closed")
	ErrConnReleased = errors.New("ledger: connection released")
)

var (
	_ ledgerstatus.Ledger = (*Pool)(nil)
	_ ledgerstatus.Pinger = (*Pool)(nil)
	_ ledgerstatus.Conn   = (*conn)(nil)
)

// Pool bounds concurrent access to a Store. Acquire blocks while all
// connections are out.
type Pool struct {
	store  *Store
	size   int64
	sem    *semaphore.Weighted
	log    *zap.Logger
	closed atomic.Bool
	inUse  atomic.Int64
}

// NewPool returns a pool of size connections over store. A size below
// one selects DefaultPoolSize. A nil logger disables logging.
func NewPool(store *Store, size int, log *zap.Logger) *Pool {
	if size < 1 {
		size = DefaultPoolSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		store: store,
		size:  int64(size),
		sem:   semaphore.NewWeighted(int64(size)),
		log:   log,
	}
}

// Acquire implements ledgerstatus.Ledger.
func (p *Pool) Acquire(ctx context.Context) (ledgerstatus.Conn, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		p.log.Debug("acquire failed", zap.Error(err))
		return nil, err
	}
	if p.closed.Load() {
		p.sem.Release(1)
		return nil, ErrPoolClosed
	}
	p.inUse.Add(1)
	return &conn{pool: p}, nil
}

// Ping implements ledgerstatus.Pinger.
func (p *Pool) Ping(ctx context.Context) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	return ctx.Err()
}

// InUse returns the number of connections currently held.
func (p *Pool) InUse() int {
	return int(p.inUse.Load())
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return int(p.size)
}

// Close stops handing out connections. Held connections keep working
// until released.
func (p *Pool) Close() error {
	if p.closed.CompareAndSwap(false, true) {
		p.log.Debug("pool closed", zap.Int64("in_use", p.inUse.Load()))
	}
	return nil
}

type conn struct {
	pool     *Pool
	released atomic.Bool
}

func (c *conn) check(ctx context.Context) error {
	if c.released.Load() {
		return ErrConnReleased
	}
	return ctx.Err()
}

func (c *conn) TransactionStatus(ctx context.Context, txID string) (types.Status, error) {
	if err := c.check(ctx); err != nil {
		return types.StatusUnknown, err
	}
	return c.pool.store.TransactionStatus(txID), nil
}

func (c *conn) Block(ctx context.Context, blockID string, includeStatus bool) (*types.Block, types.Status, error) {
	if err := c.check(ctx); err != nil {
		return nil, types.StatusUnknown, err
	}
	b, status := c.pool.store.Block(blockID)
	if !includeStatus {
		status = types.StatusUnknown
	}
	return b, status, nil
}

// Release returns the connection to the pool. Only the first call has
// an effect.
func (c *conn) Release() {
	if !c.released.CompareAndSwap(false, true) {
		return
	}
	c.pool.inUse.Add(-1)
	c.pool.sem.Release(1)
}

func (c *conn) String() string {
	return fmt.Sprintf("ledger.conn{released=%t}", c.released.Load())
}
