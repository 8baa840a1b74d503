// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package file

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/melodeon-dev/melodeon/models"
	"github.com/melodeon-dev/melodeon/provider"
)

// writeFile creates a file with the given content, creating directories as
// needed.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func scanLibrary(t *testing.T) (*models.Server, *Source) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "Artist/Album/01 First Song.mp3", "first-bytes")
	writeFile(t, root, "Artist/Album/02 - Second Song.flac", "second-bytes")
	writeFile(t, root, "Artist/Album/cover.jpg", "jpeg-bytes")
	writeFile(t, root, "loose.ogg", "loose-bytes")
	writeFile(t, root, "notes.txt", "not audio")

	srv := models.NewServer("Test Library")
	source := NewSource(root)
	if err := source.Scan(srv, "Library"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if err := srv.Store().Commit(2); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return srv, source
}

func TestScanBuildsLibrary(t *testing.T) {
	srv, _ := scanLibrary(t)

	db, err := srv.Databases.Get(1)
	if err != nil {
		t.Fatalf("get database: %v", err)
	}
	if db.Name != "Library" {
		t.Errorf("database name = %q", db.Name)
	}
	if got := db.Items.Len(); got != 3 {
		t.Errorf("items = %d, want 3 audio files", got)
	}

	base, err := db.Containers.Get(1)
	if err != nil {
		t.Fatalf("get base container: %v", err)
	}
	if !base.IsBase {
		t.Error("container 1 is not the base container")
	}
	if got := base.Items.Len(); got != db.Items.Len() {
		t.Errorf("base container holds %d of %d items", got, db.Items.Len())
	}

	// Every placement references a present item in the same database.
	base.Items.Each(func(ci *models.ContainerItem) bool {
		if _, err := db.Items.Get(ci.ItemID); err != nil {
			t.Errorf("placement %d references missing item %d", ci.ID, ci.ItemID)
		}
		return true
	})
}

func TestScanDerivesMetadata(t *testing.T) {
	srv, _ := scanLibrary(t)
	db, err := srv.Databases.Get(1)
	if err != nil {
		t.Fatalf("get database: %v", err)
	}

	byName := make(map[string]*models.Item)
	db.Items.Each(func(item *models.Item) bool {
		byName[item.Name] = item
		return true
	})

	first, ok := byName["First Song"]
	if !ok {
		t.Fatalf("item \"First Song\" missing; have %v", byName)
	}
	if first.Track != 1 {
		t.Errorf("track = %d, want 1", first.Track)
	}
	if first.Artist != "Artist" || first.Album != "Album" {
		t.Errorf("artist/album = %q/%q", first.Artist, first.Album)
	}
	if first.FileSuffix != "mp3" || first.FileType != "audio/mpeg" {
		t.Errorf("suffix/type = %q/%q", first.FileSuffix, first.FileType)
	}
	if first.FileSize != uint64(len("first-bytes")) {
		t.Errorf("size = %d", first.FileSize)
	}
	if !first.HasArtwork {
		t.Error("sidecar cover.jpg not detected")
	}
	if first.PersistentID == 0 {
		t.Error("persistent id not derived")
	}

	second, ok := byName["Second Song"]
	if !ok {
		t.Fatal("item \"Second Song\" missing")
	}
	if second.Track != 2 {
		t.Errorf("track = %d, want 2", second.Track)
	}

	loose, ok := byName["loose"]
	if !ok {
		t.Fatal("item \"loose\" missing")
	}
	if loose.HasArtwork {
		t.Error("loose file has no sidecar but reports artwork")
	}
	if loose.Track != 0 {
		t.Errorf("loose track = %d, want 0", loose.Track)
	}
}

func TestPersistentIDsStableAcrossScans(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Artist/Album/01 Song.mp3", "bytes")

	ids := make([]uint64, 0, 2)
	for i := 0; i < 2; i++ {
		srv := models.NewServer("Test")
		source := NewSource(root)
		if err := source.Scan(srv, "Library"); err != nil {
			t.Fatalf("scan: %v", err)
		}
		db, err := srv.Databases.Get(1)
		if err != nil {
			t.Fatalf("get database: %v", err)
		}
		db.Items.Each(func(item *models.Item) bool {
			ids = append(ids, item.PersistentID)
			return true
		})
	}

	if len(ids) != 2 || ids[0] != ids[1] {
		t.Errorf("persistent ids differ across scans: %v", ids)
	}
}

func TestItemData(t *testing.T) {
	srv, source := scanLibrary(t)
	db, err := srv.Databases.Get(1)
	if err != nil {
		t.Fatalf("get database: %v", err)
	}

	var first *models.Item
	db.Items.Each(func(item *models.Item) bool {
		if item.Name == "First Song" {
			first = item
			return false
		}
		return true
	})
	if first == nil {
		t.Fatal("item missing")
	}

	// Full read.
	data, mime, size, length, err := source.ItemData(first, nil)
	if err != nil {
		t.Fatalf("ItemData: %v", err)
	}
	body, err := io.ReadAll(data)
	data.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "first-bytes" {
		t.Errorf("body = %q", body)
	}
	if mime != "audio/mpeg" || size != length || size != int64(len("first-bytes")) {
		t.Errorf("mime/size/length = %q/%d/%d", mime, size, length)
	}

	// Ranged read.
	data, _, size, length, err = source.ItemData(first, &provider.ByteRange{Start: 6, End: -1})
	if err != nil {
		t.Fatalf("ItemData ranged: %v", err)
	}
	body, _ = io.ReadAll(data)
	data.Close()
	if string(body) != "bytes" {
		t.Errorf("ranged body = %q", body)
	}
	if length != 5 || size != int64(len("first-bytes")) {
		t.Errorf("ranged size/length = %d/%d", size, length)
	}

	// Range beyond the file.
	if _, _, _, _, err := source.ItemData(first, &provider.ByteRange{Start: 100, End: 200}); !errors.Is(err, provider.ErrUnsatisfiableRange) {
		t.Errorf("expected ErrUnsatisfiableRange, got %v", err)
	}

	// Unknown item.
	if _, _, _, _, err := source.ItemData(&models.Item{ID: 999}, nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestArtworkData(t *testing.T) {
	srv, source := scanLibrary(t)
	db, err := srv.Databases.Get(1)
	if err != nil {
		t.Fatalf("get database: %v", err)
	}

	var withArt, withoutArt *models.Item
	db.Items.Each(func(item *models.Item) bool {
		if item.HasArtwork {
			withArt = item
		} else {
			withoutArt = item
		}
		return true
	})
	if withArt == nil || withoutArt == nil {
		t.Fatal("fixture items missing")
	}

	data, mime, size, err := source.ArtworkData(withArt)
	if err != nil {
		t.Fatalf("ArtworkData: %v", err)
	}
	body, _ := io.ReadAll(data)
	data.Close()
	if string(body) != "jpeg-bytes" {
		t.Errorf("artwork body = %q", body)
	}
	if mime != "image/jpeg" || size != int64(len("jpeg-bytes")) {
		t.Errorf("mime/size = %q/%d", mime, size)
	}

	if _, _, _, err := source.ArtworkData(withoutArt); !errors.Is(err, provider.ErrNoArtwork) {
		t.Errorf("expected ErrNoArtwork, got %v", err)
	}
}

func TestSplitTrackPrefix(t *testing.T) {
	tests := []struct {
		name  string
		track int
		rest  string
		ok    bool
	}{
		{"01 Song", 1, "Song", true},
		{"07 - Song", 7, "Song", true},
		{"101.Song", 101, "Song", true},
		{"Song", 0, "Song", false},
		// Four or more leading digits read as a year, not a track number.
		{"2001", 0, "2001", false},
		{"1999 remix", 0, "", false},
	}

	for _, tt := range tests {
		track, rest, ok := splitTrackPrefix(tt.name)
		if ok != tt.ok {
			t.Errorf("splitTrackPrefix(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if track != tt.track || rest != tt.rest {
			t.Errorf("splitTrackPrefix(%q) = %d, %q; want %d, %q", tt.name, track, rest, tt.track, tt.rest)
		}
	}
}
