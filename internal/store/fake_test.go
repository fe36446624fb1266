package store

import (
	"context"
	"errors"
	"path"
	"sort"
	"time"
)

// fakeKV is an in-memory KV with controllable scan pagination, standing in
// for Redis in tests.
type fakeKV struct {
	lists   map[string][]string // head-first, LPush prepends
	scalars map[string]string
	ttls    map[string]time.Duration

	scanPageSize int // keys per scan page; 0 means everything at once
	scanCalls    int

	err error // when set, every operation fails with it
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		lists:   make(map[string][]string),
		scalars: make(map[string]string),
		ttls:    make(map[string]time.Duration),
	}
}

func (f *fakeKV) LPush(_ context.Context, key string, value string) error {
	if f.err != nil {
		return f.err
	}
	f.lists[key] = append([]string{value}, f.lists[key]...)
	return nil
}

func (f *fakeKV) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	items := f.lists[key]
	if start == 0 && stop == -1 {
		return append([]string{}, items...), nil
	}
	return nil, errors.New("fakeKV: unsupported range")
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	if f.err != nil {
		return f.err
	}
	f.scalars[key] = value
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	val, ok := f.scalars[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (f *fakeKV) Expire(_ context.Context, key string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.ttls[key] = ttl
	return nil
}

// Scan pages through all keys matching the glob pattern. The cursor is
// 1-based page index + 1 so that 0 is terminal, mirroring Redis.
func (f *fakeKV) Scan(_ context.Context, cursor uint64, match string, _ int64) ([]string, uint64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	f.scanCalls++

	var matched []string
	for key := range f.lists {
		if ok, _ := path.Match(match, key); ok {
			matched = append(matched, key)
		}
	}
	for key := range f.scalars {
		if ok, _ := path.Match(match, key); ok {
			matched = append(matched, key)
		}
	}
	sort.Strings(matched)

	pageSize := f.scanPageSize
	if pageSize <= 0 || pageSize >= len(matched) {
		if cursor != 0 {
			return nil, 0, nil
		}
		return matched, 0, nil
	}

	start := int(cursor)
	if start >= len(matched) {
		return nil, 0, nil
	}
	end := start + pageSize
	next := uint64(end)
	if end >= len(matched) {
		end = len(matched)
		next = 0
	}
	return matched[start:end], next, nil
}
