// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

// Package file provides a filesystem-backed library: it scans a directory
// tree for audio files, populates the model with one database and its base
// container, and serves the media bytes honoring byte ranges. Artwork comes
// from cover.jpg/cover.png sidecars next to the files.
package file

import (
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/melodeon-dev/melodeon/internal/logging"
	"github.com/melodeon-dev/melodeon/models"
	"github.com/melodeon-dev/melodeon/provider"
)

// mimeTypes maps audio file suffixes to the MIME types reported to clients.
var mimeTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"m4a":  "audio/mp4",
	"m4b":  "audio/mp4",
	"aac":  "audio/aac",
	"flac": "audio/flac",
	"ogg":  "audio/ogg",
	"opus": "audio/opus",
	"wav":  "audio/wav",
	"aif":  "audio/aiff",
	"aiff": "audio/aiff",
}

// artworkNames are the sidecar files probed per directory, first hit wins.
var artworkNames = []string{"cover.jpg", "cover.jpeg", "cover.png", "folder.jpg"}

// Source scans a directory into the model and serves the bytes behind it.
// It implements provider.MediaSource.
type Source struct {
	root string

	mu      sync.RWMutex
	paths   map[uint64]string // item id -> media path
	artwork map[uint64]string // item id -> sidecar path
	nextID  uint64
}

// NewSource creates a source rooted at dir.
func NewSource(dir string) *Source {
	return &Source{
		root:    dir,
		paths:   make(map[uint64]string),
		artwork: make(map[uint64]string),
	}
}

// Scan walks the root directory and fills one database with every audio
// file found, placed into a base container listing the whole library. The
// caller commits the result by calling Update on its provider.
func (s *Source) Scan(server *models.Server, databaseName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := &models.Database{
		ID:           1,
		PersistentID: s.persistentID("db:" + databaseName),
		Name:         databaseName,
	}
	if err := server.Databases.Add(db); err != nil {
		return fmt.Errorf("add database: %w", err)
	}

	base := &models.Container{
		ID:           1,
		PersistentID: s.persistentID("container:" + databaseName),
		Name:         databaseName,
		IsBase:       true,
	}
	if err := db.Containers.Add(base); err != nil {
		return fmt.Errorf("add base container: %w", err)
	}

	count := 0
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		suffix := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		mime, ok := mimeTypes[suffix]
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		s.nextID++
		id := s.nextID
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			rel = path
		}

		item := itemFromPath(id, s.persistentID("item:"+rel), rel, suffix, mime, info.Size())
		if sidecar := findArtwork(filepath.Dir(path)); sidecar != "" {
			item.HasArtwork = true
			s.artwork[id] = sidecar
		}
		if err := db.Items.Add(item); err != nil {
			return err
		}
		if err := base.Items.Add(&models.ContainerItem{
			ID:           id,
			PersistentID: s.persistentID("placement:" + rel),
			ItemID:       id,
			ContainerID:  base.ID,
			Order:        count + 1,
		}); err != nil {
			return err
		}

		s.paths[id] = path
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", s.root, err)
	}

	logging.Info().
		Str("root", s.root).
		Str("database", databaseName).
		Int("items", count).
		Msg("library scan complete")
	return nil
}

// itemFromPath derives item metadata from the artist/album/title directory
// convention and a leading "NN " or "NN-" track prefix on the file name.
func itemFromPath(id, persistentID uint64, rel, suffix, mime string, size int64) *models.Item {
	item := &models.Item{
		ID:           id,
		PersistentID: persistentID,
		FileSuffix:   suffix,
		FileType:     mime,
		FileName:     rel,
		FileSize:     uint64(size),
	}

	name := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	if track, rest, ok := splitTrackPrefix(name); ok {
		item.Track = track
		name = rest
	}
	item.Name = name

	parts := strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/")
	if len(parts) >= 2 && parts[0] != "." {
		item.Artist = parts[len(parts)-2]
		item.Album = parts[len(parts)-1]
	} else if len(parts) == 1 && parts[0] != "." {
		item.Album = parts[0]
	}
	return item
}

// splitTrackPrefix parses "07 Title" and "07 - Title" style names.
func splitTrackPrefix(name string) (int, string, bool) {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 0 || i > 3 {
		return 0, name, false
	}
	track, err := strconv.Atoi(name[:i])
	if err != nil {
		return 0, name, false
	}
	rest := strings.TrimLeft(name[i:], " -.")
	if rest == "" {
		return 0, name, false
	}
	return track, rest, true
}

func findArtwork(dir string) string {
	for _, name := range artworkNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// persistentID derives a stable 64-bit id from a library-relative name, so
// ids survive restarts as long as the file does not move.
func (s *Source) persistentID(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}

// ItemData implements provider.MediaSource.
func (s *Source) ItemData(item *models.Item, rng *provider.ByteRange) (io.ReadCloser, string, int64, int64, error) {
	s.mu.RLock()
	path, ok := s.paths[item.ID]
	s.mu.RUnlock()
	if !ok {
		return nil, "", 0, 0, os.ErrNotExist
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", 0, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, "", 0, 0, err
	}
	size := info.Size()

	if rng == nil {
		return f, item.FileType, size, size, nil
	}

	length, ok := rng.Length(size)
	if !ok {
		f.Close()
		return nil, "", 0, 0, provider.ErrUnsatisfiableRange
	}
	if _, err := f.Seek(rng.Start, io.SeekStart); err != nil {
		f.Close()
		return nil, "", 0, 0, err
	}
	return &limitedFile{f: f, r: io.LimitReader(f, length)}, item.FileType, size, length, nil
}

// ArtworkData implements provider.MediaSource.
func (s *Source) ArtworkData(item *models.Item) (io.ReadCloser, string, int64, error) {
	s.mu.RLock()
	path, ok := s.artwork[item.ID]
	s.mu.RUnlock()
	if !ok {
		return nil, "", 0, provider.ErrNoArtwork
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, "", 0, err
	}

	mime := "image/jpeg"
	if strings.HasSuffix(strings.ToLower(path), ".png") {
		mime = "image/png"
	}
	return f, mime, info.Size(), nil
}

// SupportsArtwork implements provider.MediaSource.
func (s *Source) SupportsArtwork() bool { return true }

// SupportsPersistentID implements provider.MediaSource.
func (s *Source) SupportsPersistentID() bool { return true }

// limitedFile reads a window of the underlying file and closes it.
type limitedFile struct {
	f *os.File
	r io.Reader
}

func (l *limitedFile) Read(p []byte) (int, error) { return l.r.Read(p) }
func (l *limitedFile) Close() error               { return l.f.Close() }
