// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package cache

import (
	"bytes"
	"net/url"
	"testing"
	"time"
)

func TestGetPut(t *testing.T) {
	c := NewResponseCache(4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("a", []byte("payload"))
	got, ok := c.Get("a")
	if !ok || !bytes.Equal(got, []byte("payload")) {
		t.Fatalf("Get(a) = %q, %v", got, ok)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewResponseCache(2, time.Minute)

	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))
	c.Get("a") // refresh a; b is now oldest
	c.Put("c", []byte("3"))

	if _, ok := c.Get("b"); ok {
		t.Error("expected b evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a retained")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c retained")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewResponseCache(4, time.Millisecond)

	c.Put("a", []byte("1"))
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expected entry expired")
	}
	if c.Len() != 0 {
		t.Errorf("expected lazy removal, Len() = %d", c.Len())
	}
}

func TestPutUpdatesExisting(t *testing.T) {
	c := NewResponseCache(4, time.Minute)

	c.Put("a", []byte("old"))
	c.Put("a", []byte("new"))

	got, _ := c.Get("a")
	if !bytes.Equal(got, []byte("new")) {
		t.Errorf("Get(a) = %q, want new", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestKeyIgnoresSessionID(t *testing.T) {
	a := Key("items", "/databases/1/items", url.Values{
		"session-id":      {"7"},
		"revision-number": {"2"},
		"delta":           {"0"},
	})
	b := Key("items", "/databases/1/items", url.Values{
		"session-id":      {"8"},
		"revision-number": {"2"},
		"delta":           {"0"},
	})
	if a != b {
		t.Errorf("keys differ across session ids: %s vs %s", a, b)
	}
}

func TestKeyVariesWithRevision(t *testing.T) {
	a := Key("items", "/databases/1/items", url.Values{"revision-number": {"2"}, "delta": {"0"}})
	b := Key("items", "/databases/1/items", url.Values{"revision-number": {"3"}, "delta": {"2"}})
	if a == b {
		t.Error("expected different keys for different revisions")
	}
}

func TestKeyVariesWithEndpointAndPath(t *testing.T) {
	args := url.Values{"revision-number": {"2"}}
	if Key("items", "/databases/1/items", args) == Key("containers", "/databases/1/items", args) {
		t.Error("expected endpoint to affect the key")
	}
	if Key("items", "/databases/1/items", args) == Key("items", "/databases/2/items", args) {
		t.Error("expected path to affect the key")
	}
}
