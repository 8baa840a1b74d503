// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package models

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Collection parent keys pack the owner ids and a class discriminator into
// one uint64. Database ids fit 24 bits and container ids 24 bits, which keeps
// every level collision-free:
//
//	databases        1
//	items            dbID<<8 | 2
//	containers       dbID<<8 | 3
//	container items  dbID<<32 | containerID<<8 | 4
const (
	classDatabases      = 1
	classItems          = 2
	classContainers     = 3
	classContainerItems = 4
)

func databasesKey() uint64 {
	return classDatabases
}

func itemsKey(databaseID uint64) uint64 {
	return databaseID<<8 | classItems
}

func containersKey(databaseID uint64) uint64 {
	return databaseID<<8 | classContainers
}

func containerItemsKey(databaseID, containerID uint64) uint64 {
	return databaseID<<32 | containerID<<8 | classContainerItems
}

// NewPersistentID returns a random 64-bit identifier for entities whose
// backing provider does not supply one. Stable only for the process lifetime.
func NewPersistentID() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}
