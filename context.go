package custody

import (
	"context"
	"fmt"
	"regexp"

	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Context carries the block environment of a single instruction: the
// block header, its height, the chain id and a logger. Each value can be
// set only once per context chain.
type Context = context.Context

type ctxKey uint8

const (
	keyHeader ctxKey = iota + 1
	keyHeight
	keyChainID
	keyLogger
)

var (
	// DefaultLogger is returned by GetLogger when no logger was attached.
	DefaultLogger = log.NewNopLogger()

	// IsValidChainID reports whether the value can be used as a chain id.
	IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString
)

// attachOnce stores val under key and panics when the key is already
// present. Block values never change while a block is processed.
func attachOnce(ctx Context, key ctxKey, val interface{}, what string) Context {
	if ctx.Value(key) != nil {
		panic(what + " already set")
	}
	return context.WithValue(ctx, key, val)
}

// WithHeader attaches the block header. Panics if one is already set.
func WithHeader(ctx Context, header abci.Header) Context {
	return attachOnce(ctx, keyHeader, header, "header")
}

// GetHeader returns the block header and false when none is attached.
func GetHeader(ctx Context) (abci.Header, bool) {
	h, ok := ctx.Value(keyHeader).(abci.Header)
	return h, ok
}

// WithHeight attaches the block height. Panics if one is already set.
func WithHeight(ctx Context, height int64) Context {
	return attachOnce(ctx, keyHeight, height, "height")
}

// GetHeight returns the block height and false when none is attached.
func GetHeight(ctx Context) (int64, bool) {
	h, ok := ctx.Value(keyHeight).(int64)
	return h, ok
}

// WithChainID attaches the chain id. Panics on an invalid id or when a
// chain id is already set.
func WithChainID(ctx Context, chainID string) Context {
	if !IsValidChainID(chainID) {
		panic(fmt.Sprintf("invalid chain id %q", chainID))
	}
	return attachOnce(ctx, keyChainID, chainID, "chain id")
}

// GetChainID returns the chain id. The application sets it before any
// handler runs, so a missing value is a programming error and panics.
func GetChainID(ctx Context) string {
	id, ok := ctx.Value(keyChainID).(string)
	if !ok {
		panic("chain id not set")
	}
	return id
}

// WithLogger replaces the logger of the context.
func WithLogger(ctx Context, logger log.Logger) Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// WithLogInfo returns a context whose logger carries the given key/value
// pairs on every line.
func WithLogInfo(ctx Context, keyvals ...interface{}) Context {
	return WithLogger(ctx, GetLogger(ctx).With(keyvals...))
}

// GetLogger returns the context logger or DefaultLogger.
func GetLogger(ctx Context) log.Logger {
	if l, ok := ctx.Value(keyLogger).(log.Logger); ok {
		return l
	}
	return DefaultLogger
}
