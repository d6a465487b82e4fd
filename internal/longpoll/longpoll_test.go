package longpoll

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(dst *[]int) func(int) error {
	return func(v int) error {
		*dst = append(*dst, v)
		return nil
	}
}

func TestChannel_noWaitEmpty(t *testing.T) {
	ch := make(chan int)
	var got []int
	n, err := Channel(context.Background(), &Config{NoWait: true}, ch, collect(&got))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, got)
}

func TestChannel_drainsBuffered(t *testing.T) {
	ch := make(chan int, 8)
	for i := 0; i < 5; i++ {
		ch <- i
	}
	var got []int
	n, err := Channel(context.Background(), nil, ch, collect(&got))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestChannel_maxSize(t *testing.T) {
	ch := make(chan int, 8)
	for i := 0; i < 5; i++ {
		ch <- i
	}
	var got []int
	n, err := Channel(context.Background(), &Config{MaxSize: 2}, ch, collect(&got))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{0, 1}, got)
	assert.Len(t, ch, 3)
}

func TestChannel_blocksForFirst(t *testing.T) {
	ch := make(chan int, 1)
	go func() {
		time.Sleep(20 * time.Millisecond)
		ch <- 7
	}()
	var got []int
	n, err := Channel(context.Background(), nil, ch, collect(&got))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{7}, got)
}

func TestChannel_deadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	n, err := Channel(ctx, nil, make(chan int), func(int) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, n)
}

func TestChannel_closed(t *testing.T) {
	ch := make(chan int, 2)
	ch <- 1
	close(ch)
	var got []int
	_, err := Channel(context.Background(), nil, ch, collect(&got))
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, []int{1}, got)
}

func TestChannel_handlerError(t *testing.T) {
	ch := make(chan int, 2)
	ch <- 1
	ch <- 2
	e := errors.New(`some error`)
	n, err := Channel(context.Background(), nil, ch, func(int) error { return e })
	assert.Same(t, e, err)
	assert.Equal(t, 1, n)
}

func TestChannel_nilPanics(t *testing.T) {
	h := func(int) error { return nil }
	assert.Panics(t, func() { _, _ = Channel(nil, nil, make(chan int), h) }) //nolint:staticcheck
	assert.Panics(t, func() { _, _ = Channel(context.Background(), nil, nil, h) })
	assert.Panics(t, func() { _, _ = Channel[int](context.Background(), nil, make(chan int), nil) })
}
