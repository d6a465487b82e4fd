// Package longpoll receives batches of values from channels, blocking for at
// most the first value.
package longpoll

import (
	"context"
	"io"
)

// Config models optional configuration for Channel.
type Config struct {
	// MaxSize is the maximum number of values to receive. Values < 0 disable
	// the limit.
	//
	// Defaults to 64, if 0.
	MaxSize int

	// NoWait disables blocking for the first value, making Channel a pure
	// non-blocking drain.
	NoWait bool
}

// Channel receives as many values from ch as are immediately available,
// passing each to handler, in order. Unless cfg.NoWait is set, it first
// blocks until a value is received or ctx is done. The cfg parameter may be
// nil.
//
// The number of values received is returned. If ctx is done before the first
// value, its error is returned. If ch is closed, io.EOF is returned, after
// handling any buffered values. Errors from handler are returned as-is.
//
// Providing a nil ctx, ch, or handler will cause a panic.
func Channel[T any](ctx context.Context, cfg *Config, ch <-chan T, handler func(value T) error) (int, error) {
	if ctx == nil {
		panic(`longpoll: nil context`)
	}
	if ch == nil {
		panic(`longpoll: nil channel`)
	}
	if handler == nil {
		panic(`longpoll: nil handler`)
	}

	maxSize := 64
	var noWait bool
	if cfg != nil {
		if cfg.MaxSize != 0 {
			maxSize = cfg.MaxSize
		}
		noWait = cfg.NoWait
	}

	var size int

	if !noWait && maxSize != 0 {
		// guard context cancel, avoid receiving if already done
		if err := ctx.Err(); err != nil {
			return size, err
		}
		select {
		case <-ctx.Done():
			return size, ctx.Err()
		case value, ok := <-ch:
			if !ok {
				return size, io.EOF
			}
			size++
			if err := handler(value); err != nil {
				return size, err
			}
		}
	}

	for maxSize < 0 || size < maxSize {
		select {
		case value, ok := <-ch:
			if !ok {
				return size, io.EOF
			}
			size++
			if err := handler(value); err != nil {
				return size, err
			}
		default:
			return size, nil
		}
	}

	return size, nil
}
