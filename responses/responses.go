// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package responses

import (
	"github.com/melodeon-dev/melodeon/daap"
	"github.com/melodeon-dev/melodeon/models"
)

// Protocol versions advertised by /server-info. DAAP 3.x is what iTunes 7+
// speaks; DMAP 2.0 is the shared container protocol revision.
const (
	dmapProtocolVersion = "2.0.0"
	daapProtocolVersion = "3.0.0"
)

// itemKindAudio is the dmap.itemkind for playable audio entries.
const itemKindAudio = 2

// ServerCapabilities describes what the backing provider supports. The flags
// gate optional fields across all builders.
type ServerCapabilities struct {
	Name                 string
	PasswordSet          bool
	SupportsPersistentID bool
	SupportsArtwork      bool
	DatabaseCount        int
	TimeoutSeconds       int
}

// ServerInfo builds the /server-info capability response.
func ServerInfo(caps ServerCapabilities) *daap.Object {
	timeout := caps.TimeoutSeconds
	if timeout == 0 {
		timeout = 1800
	}

	loginRequired, authMethod := 0, 0
	if caps.PasswordSet {
		// Authentication method 2 is password-only Basic auth.
		loginRequired, authMethod = 1, 2
	}

	root := daap.NewContainer(daap.ServerInfoResponse,
		daap.New(daap.Status, 200),
		daap.New(daap.ProtocolVersion, dmapProtocolVersion),
		daap.New(daap.DAAPProtocolVersion, daapProtocolVersion),
		daap.New(daap.ItemName, caps.Name),
		daap.New(daap.TimeoutInterval, timeout),
		daap.New(daap.SupportsAutoLogout, 1),
		daap.New(daap.LoginRequired, loginRequired),
		daap.New(daap.AuthenticationMethod, authMethod),
		daap.New(daap.SupportsExtensions, 1),
		daap.New(daap.SupportsIndex, 1),
		daap.New(daap.SupportsBrowse, 1),
		daap.New(daap.SupportsQuery, 1),
		daap.New(daap.DatabasesCount, caps.DatabaseCount),
		daap.New(daap.SupportsUpdate, 1),
		daap.New(daap.SupportsResolve, 1),
	)
	if caps.SupportsPersistentID {
		root.Append(daap.New(daap.SupportsPersistentIDs, 1))
	}
	if caps.SupportsArtwork {
		root.Append(daap.New(daap.SupportsExtraData, 1))
	}
	return root
}

// ContentCodes builds the /content-codes dictionary from the static code
// table.
func ContentCodes() *daap.Object {
	root := daap.NewContainer(daap.ContentCodesResponse,
		daap.New(daap.Status, 200),
	)
	for _, cc := range daap.Codes() {
		root.Append(daap.NewContainer(daap.Dictionary,
			daap.New(daap.ContentCodesNumber, cc.Tag),
			daap.New(daap.ContentCodesName, cc.Name),
			daap.New(daap.ContentCodesType, int(cc.Type)),
		))
	}
	return root
}

// Login builds the /login response carrying the allocated session id.
func Login(sessionID uint64) *daap.Object {
	return daap.NewContainer(daap.LoginResponse,
		daap.New(daap.Status, 200),
		daap.New(daap.SessionID, sessionID),
	)
}

// Update builds the /update response carrying the server revision the client
// should poll for next.
func Update(revision uint64) *daap.Object {
	return daap.NewContainer(daap.UpdateResponse,
		daap.New(daap.Status, 200),
		daap.New(daap.ServerRevision, revision),
	)
}

// delta is the resolved diff policy for one list response: either added ids
// or removed ids, never both.
type delta struct {
	added    []uint64
	removed  []uint64
	isUpdate bool
}

// computeDelta applies the diff policy. A nil old view means a full listing.
// For delta requests removals win: if anything was removed between old and
// new, only the deleted-id listing is returned and additions wait for the
// client's next poll.
func computeDelta[T models.Entity](current, old *models.Collection[T]) delta {
	if old == nil {
		return delta{added: current.Updated(nil)}
	}
	d := delta{isUpdate: true}
	d.removed = current.Removed(old)
	if len(d.removed) == 0 {
		d.added = current.Updated(old)
	}
	return d
}

// listResponse assembles the shared list shape around the per-entry builder.
// The builder receives the entry's zero-based position in the listing.
func listResponse[T models.Entity](root *daap.ContentCode, current *models.Collection[T], d delta, entry func(int, T) *daap.Object) *daap.Object {
	updateType := 0
	if d.isUpdate {
		updateType = 1
	}

	resp := daap.NewContainer(root,
		daap.New(daap.Status, 200),
		daap.New(daap.UpdateType, updateType),
		daap.New(daap.SpecifiedTotal, current.Len()),
	)

	if len(d.removed) > 0 {
		resp.Append(daap.New(daap.ReturnedCount, len(d.removed)))
		deleted := daap.NewContainer(daap.DeletedIDListing)
		for _, id := range d.removed {
			deleted.Append(daap.New(daap.ItemID, id))
		}
		resp.Append(deleted)
		return resp
	}

	resp.Append(daap.New(daap.ReturnedCount, len(d.added)))
	listing := daap.NewContainer(daap.Listing)
	for i, id := range d.added {
		value, err := current.Get(id)
		if err != nil {
			continue
		}
		listing.Append(entry(i, value))
	}
	resp.Append(listing)
	return resp
}

// Databases builds the /databases response from a current view and an
// optional older view.
func Databases(current, old *models.Collection[*models.Database], caps ServerCapabilities) *daap.Object {
	rev := current.Revision()
	return listResponse(daap.ServerDatabases, current, computeDelta(current, old), func(_ int, db *models.Database) *daap.Object {
		// Counts are taken at the same revision as the listed view, so a
		// historical database reports its size at that point in time.
		entry := daap.NewContainer(daap.ListingItem,
			daap.New(daap.ItemID, db.ID),
			daap.New(daap.ItemName, db.Name),
			daap.New(daap.ItemCount, db.Items.AtRevision(rev).Len()),
			daap.New(daap.ContainerCount, db.Containers.AtRevision(rev).Len()),
		)
		if caps.SupportsPersistentID && db.PersistentID != 0 {
			entry.Append(daap.New(daap.PersistentID, db.PersistentID))
		}
		return entry
	})
}

// Items builds the /databases/{db}/items response.
func Items(current, old *models.Collection[*models.Item], caps ServerCapabilities) *daap.Object {
	return listResponse(daap.DatabaseSongs, current, computeDelta(current, old), func(i int, item *models.Item) *daap.Object {
		entry := daap.NewContainer(daap.ListingItem,
			daap.New(daap.ItemID, item.ID),
			daap.New(daap.ItemKind, itemKindAudio),
			daap.New(daap.ContainerItemID, i),
		)
		if caps.SupportsPersistentID && item.PersistentID != 0 {
			entry.Append(daap.New(daap.PersistentID, item.PersistentID))
		}
		if item.Name != "" {
			entry.Append(daap.New(daap.ItemName, item.Name))
		}
		if item.Track != 0 {
			entry.Append(daap.New(daap.SongTrackNumber, item.Track))
		}
		if item.Artist != "" {
			entry.Append(daap.New(daap.SongArtist, item.Artist))
		}
		if item.Album != "" {
			entry.Append(daap.New(daap.SongAlbum, item.Album))
		}
		if item.Genre != "" {
			entry.Append(daap.New(daap.SongGenre, item.Genre))
		}
		if item.Year != 0 {
			entry.Append(daap.New(daap.SongYear, item.Year))
		}
		if item.Bitrate != 0 {
			entry.Append(daap.New(daap.SongBitRate, item.Bitrate))
		}
		if item.Duration != 0 {
			entry.Append(daap.New(daap.SongTime, item.Duration))
		}
		if item.FileSize != 0 {
			entry.Append(daap.New(daap.SongSize, item.FileSize))
		}
		if item.FileSuffix != "" {
			entry.Append(daap.New(daap.SongFormat, item.FileSuffix))
		}
		if caps.SupportsArtwork && item.HasArtwork {
			entry.Append(daap.New(daap.SongArtworkCnt, 1))
			entry.Append(daap.New(daap.SongExtraData, 1))
		}
		return entry
	})
}

// Containers builds the /databases/{db}/containers response.
func Containers(current, old *models.Collection[*models.Container], caps ServerCapabilities) *daap.Object {
	rev := current.Revision()
	return listResponse(daap.DatabasePlaylists, current, computeDelta(current, old), func(i int, c *models.Container) *daap.Object {
		// An orphaned container (parent removed) reports parent id 0.
		// Playlist entries number their containeritemid from 1.
		entry := daap.NewContainer(daap.ListingItem,
			daap.New(daap.ItemID, c.ID),
			daap.New(daap.ItemName, c.Name),
			daap.New(daap.ItemCount, c.Items.AtRevision(rev).Len()),
			daap.New(daap.ContainerItemID, i+1),
			daap.New(daap.ParentContainerID, c.ParentID),
		)
		if caps.SupportsPersistentID && c.PersistentID != 0 {
			entry.Append(daap.New(daap.PersistentID, c.PersistentID))
		}
		if c.IsBase {
			entry.Append(daap.New(daap.BasePlaylist, 1))
		}
		if c.IsSmart {
			entry.Append(daap.New(daap.SmartPlaylist, 1))
		}
		return entry
	})
}

// ContainerItems builds the /databases/{db}/containers/{c}/items response.
// The itemid field carries the referenced item's id; containeritemid carries
// the placement's own id.
func ContainerItems(current, old *models.Collection[*models.ContainerItem], caps ServerCapabilities) *daap.Object {
	return listResponse(daap.PlaylistSongs, current, computeDelta(current, old), func(_ int, ci *models.ContainerItem) *daap.Object {
		entry := daap.NewContainer(daap.ListingItem,
			daap.New(daap.ItemKind, itemKindAudio),
			daap.New(daap.ItemID, ci.ItemID),
			daap.New(daap.ContainerItemID, ci.ID),
		)
		if caps.SupportsPersistentID && ci.PersistentID != 0 {
			entry.Append(daap.New(daap.PersistentID, ci.PersistentID))
		}
		return entry
	})
}
