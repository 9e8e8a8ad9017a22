// internal/loader/mocks_test.go
package loader

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hydraswap-io/hydra-go/internal/solclient"
)

// fakeTransport is an in-memory Transport: a key/value account store
// plus manually triggered subscription pushes.
type fakeTransport struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey][]byte
	slot     uint64
	fetchErr error

	subs   map[solana.PublicKey][]*fakeSub
	nextID int
}

type fakeSub struct {
	id     int
	fn     func(solclient.AccountInfo)
	closed bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		accounts: make(map[solana.PublicKey][]byte),
		subs:     make(map[solana.PublicKey][]*fakeSub),
		slot:     1,
	}
}

func (f *fakeTransport) set(key solana.PublicKey, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[key] = data
}

func (f *fakeTransport) FetchAccount(_ context.Context, key solana.PublicKey, _ rpc.CommitmentType) (*solclient.AccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	data, ok := f.accounts[key]
	if !ok {
		return nil, solclient.ErrAccountNotFound
	}
	return &solclient.AccountInfo{Data: data, Slot: f.slot}, nil
}

func (f *fakeTransport) SubscribeAccount(_ context.Context, key solana.PublicKey, _ rpc.CommitmentType, fn func(solclient.AccountInfo)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	sub := &fakeSub{id: f.nextID, fn: fn}
	f.subs[key] = append(f.subs[key], sub)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		sub.closed = true
	}, nil
}

// push simulates an on-chain change of key.
func (f *fakeTransport) push(key solana.PublicKey, data []byte, slot uint64) {
	f.mu.Lock()
	f.accounts[key] = data
	f.slot = slot
	var targets []func(solclient.AccountInfo)
	for _, sub := range f.subs[key] {
		if !sub.closed {
			targets = append(targets, sub.fn)
		}
	}
	f.mu.Unlock()

	for _, fn := range targets {
		fn(solclient.AccountInfo{Data: data, Slot: slot})
	}
}

func (f *fakeTransport) subscriberCount(key solana.PublicKey) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, sub := range f.subs[key] {
		if !sub.closed {
			n++
		}
	}
	return n
}

// decodeUint64 is the trivial test decoder: 8 little-endian bytes.
func decodeUint64(data []byte) (uint64, error) {
	if len(data) < 8 {
		return 0, errShortData
	}
	return binary.LittleEndian.Uint64(data), nil
}

func encodeUint64(v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return buf[:]
}
