// internal/solclient/types.go
package solclient

import (
	"errors"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"
)

const (
	maxRetries     = 3
	retryDelay     = 500 * time.Millisecond
	defaultTimeout = 10 * time.Second
)

// ErrAccountNotFound reports that the requested account does not exist
// on-chain. Callers treat it as an answer, not as a fatal condition.
var ErrAccountNotFound = errors.New("account not found")

// AccountInfo is the raw state of one account at a known slot.
type AccountInfo struct {
	Data     []byte
	Owner    solana.PublicKey
	Lamports uint64
	Slot     uint64
}

// Client talks to a pool of RPC endpoints and one websocket endpoint.
type Client struct {
	rpcClients []*RPCClient
	logger     *zap.Logger

	mutex     sync.Mutex
	currIndex int

	wsURL  string
	wsOnce sync.Once
	ws     *ws.Client
	wsErr  error
}

// RPCClient wraps one RPC endpoint with health state and metrics.
type RPCClient struct {
	Client  *rpc.Client
	URL     string
	mutex   sync.RWMutex
	active  bool
	metrics *RPCMetrics
}

// RPCMetrics tracks per-endpoint success counts and latency.
type RPCMetrics struct {
	mutex        sync.RWMutex
	successCount uint64
	errorCount   uint64
	latency      time.Duration
}
