// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package daap

// Type identifies the wire encoding of an atom value.
type Type uint8

// Wire types. The numeric values are the ones advertised by the
// /content-codes dictionary (dmap.contentcodestype).
const (
	TypeByte      Type = 1  // int8
	TypeUByte     Type = 2  // uint8
	TypeShort     Type = 3  // int16
	TypeUShort    Type = 4  // uint16
	TypeInt       Type = 5  // int32, or a 4-char ASCII literal
	TypeUInt      Type = 6  // uint32
	TypeLong      Type = 7  // int64
	TypeULong     Type = 8  // uint64
	TypeString    Type = 9  // UTF-8 bytes, Latin-1 fallback on decode
	TypeDate      Type = 10 // uint32 seconds since the epoch
	TypeVersion   Type = 11 // two uint16 halves, "major.minor"
	TypeContainer Type = 12 // concatenated TLVs
)

// String returns the short type name used by content-code dictionaries.
func (t Type) String() string {
	switch t {
	case TypeByte:
		return "byte"
	case TypeUByte:
		return "ubyte"
	case TypeShort:
		return "short"
	case TypeUShort:
		return "ushort"
	case TypeInt:
		return "int"
	case TypeUInt:
		return "uint"
	case TypeLong:
		return "long"
	case TypeULong:
		return "ulong"
	case TypeString:
		return "string"
	case TypeDate:
		return "date"
	case TypeVersion:
		return "version"
	case TypeContainer:
		return "container"
	default:
		return "unknown"
	}
}

// ContentCode binds a 4-byte wire tag to its symbolic name and wire type.
type ContentCode struct {
	Tag  string // exactly 4 ASCII bytes
	Name string
	Type Type
}

// contentCodes is the static code table. It covers the generic dmap.*
// namespace plus the daap.* and com.apple.itunes.* codes emitted by the
// response builders.
var contentCodes = []ContentCode{
	{"mcon", "dmap.container", TypeContainer},
	{"miid", "dmap.itemid", TypeInt},
	{"minm", "dmap.itemname", TypeString},
	{"mikd", "dmap.itemkind", TypeByte},
	{"mper", "dmap.persistentid", TypeULong},
	{"mstt", "dmap.status", TypeInt},
	{"msts", "dmap.statusstring", TypeString},
	{"mimc", "dmap.itemcount", TypeInt},
	{"mctc", "dmap.containercount", TypeInt},
	{"mcti", "dmap.containeritemid", TypeInt},
	{"mpco", "dmap.parentcontainerid", TypeInt},
	{"mlcl", "dmap.listing", TypeContainer},
	{"mlit", "dmap.listingitem", TypeContainer},
	{"mbcl", "dmap.bag", TypeContainer},
	{"mdcl", "dmap.dictionary", TypeContainer},
	{"mudl", "dmap.deletedidlisting", TypeContainer},
	{"mrco", "dmap.returnedcount", TypeInt},
	{"mtco", "dmap.specifiedtotalcount", TypeInt},
	{"muty", "dmap.updatetype", TypeByte},
	{"msrv", "dmap.serverinforesponse", TypeContainer},
	{"mslr", "dmap.loginrequired", TypeByte},
	{"msau", "dmap.authenticationmethod", TypeByte},
	{"mpro", "dmap.protocolversion", TypeVersion},
	{"msal", "dmap.supportsautologout", TypeByte},
	{"msup", "dmap.supportsupdate", TypeByte},
	{"mspi", "dmap.supportspersistentids", TypeByte},
	{"msex", "dmap.supportsextensions", TypeByte},
	{"msbr", "dmap.supportsbrowse", TypeByte},
	{"msqy", "dmap.supportsquery", TypeByte},
	{"msix", "dmap.supportsindex", TypeByte},
	{"msrs", "dmap.supportsresolve", TypeByte},
	{"mstm", "dmap.timeoutinterval", TypeInt},
	{"msdc", "dmap.databasescount", TypeInt},
	{"mccr", "dmap.contentcodesresponse", TypeContainer},
	{"mcnm", "dmap.contentcodesnumber", TypeInt},
	{"mcna", "dmap.contentcodesname", TypeString},
	{"mcty", "dmap.contentcodestype", TypeShort},
	{"mlog", "dmap.loginresponse", TypeContainer},
	{"mlid", "dmap.sessionid", TypeInt},
	{"mupd", "dmap.updateresponse", TypeContainer},
	{"musr", "dmap.serverrevision", TypeInt},

	{"apro", "daap.protocolversion", TypeVersion},
	{"avdb", "daap.serverdatabases", TypeContainer},
	{"adbs", "daap.databasesongs", TypeContainer},
	{"aply", "daap.databaseplaylists", TypeContainer},
	{"apso", "daap.playlistsongs", TypeContainer},
	{"abpl", "daap.baseplaylist", TypeByte},
	{"asal", "daap.songalbum", TypeString},
	{"asar", "daap.songartist", TypeString},
	{"asbr", "daap.songbitrate", TypeShort},
	{"asco", "daap.songcompilation", TypeByte},
	{"asda", "daap.songdateadded", TypeDate},
	{"asdm", "daap.songdatemodified", TypeDate},
	{"asdc", "daap.songdisccount", TypeShort},
	{"asdn", "daap.songdiscnumber", TypeShort},
	{"asdk", "daap.songdatakind", TypeByte},
	{"asfm", "daap.songformat", TypeString},
	{"asgn", "daap.songgenre", TypeString},
	{"assz", "daap.songsize", TypeInt},
	{"astm", "daap.songtime", TypeInt},
	{"astc", "daap.songtrackcount", TypeShort},
	{"astn", "daap.songtracknumber", TypeShort},
	{"asur", "daap.songuserrating", TypeByte},
	{"asyr", "daap.songyear", TypeShort},
	{"asul", "daap.songdataurl", TypeString},
	{"asac", "daap.songartworkcount", TypeShort},
	{"ased", "daap.songextradata", TypeShort},
	{"ated", "daap.supportsextradata", TypeShort},
	{"assn", "daap.sortname", TypeString},
	{"assa", "daap.sortartist", TypeString},
	{"assl", "daap.sortalbumartist", TypeString},
	{"assu", "daap.sortalbum", TypeString},

	{"aeSP", "com.apple.itunes.smart-playlist", TypeByte},
}

// The lookup maps are built in a variable initializer, not an init func, so
// the pre-resolved codes below can depend on them during package init.
var codesByTag, codesByName = func() (map[string]*ContentCode, map[string]*ContentCode) {
	byTag := make(map[string]*ContentCode, len(contentCodes))
	byName := make(map[string]*ContentCode, len(contentCodes))
	for i := range contentCodes {
		cc := &contentCodes[i]
		byTag[cc.Tag] = cc
		byName[cc.Name] = cc
	}
	return byTag, byName
}()

// Codes returns the full content-code table, in declaration order. The
// /content-codes endpoint renders its dictionary from this.
func Codes() []ContentCode {
	return contentCodes
}

// CodeByTag resolves a 4-byte wire tag. The second return is false for
// unknown tags.
func CodeByTag(tag string) (*ContentCode, bool) {
	cc, ok := codesByTag[tag]
	return cc, ok
}

// CodeByName resolves a symbolic name such as "dmap.status".
func CodeByName(name string) (*ContentCode, bool) {
	cc, ok := codesByName[name]
	return cc, ok
}

func mustCode(name string) *ContentCode {
	cc, ok := codesByName[name]
	if !ok {
		panic("daap: unknown content code " + name)
	}
	return cc
}

// Pre-resolved content codes for the builder fast path.
var (
	Container         = mustCode("dmap.container")
	ItemID            = mustCode("dmap.itemid")
	ItemName          = mustCode("dmap.itemname")
	ItemKind          = mustCode("dmap.itemkind")
	PersistentID      = mustCode("dmap.persistentid")
	Status            = mustCode("dmap.status")
	ItemCount         = mustCode("dmap.itemcount")
	ContainerCount    = mustCode("dmap.containercount")
	ContainerItemID   = mustCode("dmap.containeritemid")
	ParentContainerID = mustCode("dmap.parentcontainerid")
	Listing           = mustCode("dmap.listing")
	ListingItem       = mustCode("dmap.listingitem")
	Dictionary        = mustCode("dmap.dictionary")
	DeletedIDListing  = mustCode("dmap.deletedidlisting")
	ReturnedCount     = mustCode("dmap.returnedcount")
	SpecifiedTotal    = mustCode("dmap.specifiedtotalcount")
	UpdateType        = mustCode("dmap.updatetype")

	ServerInfoResponse    = mustCode("dmap.serverinforesponse")
	LoginRequired         = mustCode("dmap.loginrequired")
	AuthenticationMethod  = mustCode("dmap.authenticationmethod")
	ProtocolVersion       = mustCode("dmap.protocolversion")
	DAAPProtocolVersion   = mustCode("daap.protocolversion")
	SupportsAutoLogout    = mustCode("dmap.supportsautologout")
	SupportsUpdate        = mustCode("dmap.supportsupdate")
	SupportsPersistentIDs = mustCode("dmap.supportspersistentids")
	SupportsExtensions    = mustCode("dmap.supportsextensions")
	SupportsBrowse        = mustCode("dmap.supportsbrowse")
	SupportsQuery         = mustCode("dmap.supportsquery")
	SupportsIndex         = mustCode("dmap.supportsindex")
	SupportsResolve       = mustCode("dmap.supportsresolve")
	SupportsExtraData     = mustCode("daap.supportsextradata")
	TimeoutInterval       = mustCode("dmap.timeoutinterval")
	DatabasesCount        = mustCode("dmap.databasescount")

	ContentCodesResponse = mustCode("dmap.contentcodesresponse")
	ContentCodesNumber   = mustCode("dmap.contentcodesnumber")
	ContentCodesName     = mustCode("dmap.contentcodesname")
	ContentCodesType     = mustCode("dmap.contentcodestype")

	LoginResponse  = mustCode("dmap.loginresponse")
	SessionID      = mustCode("dmap.sessionid")
	UpdateResponse = mustCode("dmap.updateresponse")
	ServerRevision = mustCode("dmap.serverrevision")

	ServerDatabases   = mustCode("daap.serverdatabases")
	DatabaseSongs     = mustCode("daap.databasesongs")
	DatabasePlaylists = mustCode("daap.databaseplaylists")
	PlaylistSongs     = mustCode("daap.playlistsongs")
	BasePlaylist      = mustCode("daap.baseplaylist")
	SmartPlaylist     = mustCode("com.apple.itunes.smart-playlist")

	SongAlbum       = mustCode("daap.songalbum")
	SongArtist      = mustCode("daap.songartist")
	SongBitRate     = mustCode("daap.songbitrate")
	SongFormat      = mustCode("daap.songformat")
	SongGenre       = mustCode("daap.songgenre")
	SongSize        = mustCode("daap.songsize")
	SongTime        = mustCode("daap.songtime")
	SongTrackNumber = mustCode("daap.songtracknumber")
	SongYear        = mustCode("daap.songyear")
	SongArtworkCnt  = mustCode("daap.songartworkcount")
	SongExtraData   = mustCode("daap.songextradata")

	SortName        = mustCode("daap.sortname")
	SortArtist      = mustCode("daap.sortartist")
	SortAlbumArtist = mustCode("daap.sortalbumartist")
	SortAlbum       = mustCode("daap.sortalbum")
)
