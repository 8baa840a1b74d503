// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

// Package zeroconf advertises the DAAP service over Multicast DNS so iTunes
// discovers the library under Shared. The TXT records mirror what mt-daapd
// publishes; iTunes keys off txtvers, Password and the machine identifiers.
package zeroconf

import (
	"context"
	"fmt"

	"github.com/grandcat/zeroconf"

	"github.com/melodeon-dev/melodeon/internal/logging"
)

// serviceType is the registered DAAP service type.
const serviceType = "_daap._tcp"

// Advertiser publishes one DAAP service instance. It implements
// suture.Service: Serve registers the instance, blocks until the context is
// cancelled, then unregisters.
type Advertiser struct {
	// Name is the instance and machine name shown to clients.
	Name string

	// Port is the DAAP listener port.
	Port int

	// PasswordProtected toggles the Password TXT record.
	PasswordProtected bool

	// MachineID and DatabaseID are stable 64-bit identifiers, rendered as
	// 16 hex digits.
	MachineID  uint64
	DatabaseID uint64
}

// TXTRecords renders the advertised records.
func (a *Advertiser) TXTRecords() []string {
	password := "0"
	if a.PasswordProtected {
		password = "1"
	}
	return []string{
		"txtvers=1",
		"iTSh Version=131073",
		fmt.Sprintf("Machine Name=%s", a.Name),
		fmt.Sprintf("Machine ID=%016X", a.MachineID),
		fmt.Sprintf("Database ID=%016X", a.DatabaseID),
		fmt.Sprintf("Password=%s", password),
	}
}

// Serve implements suture.Service.
func (a *Advertiser) Serve(ctx context.Context) error {
	server, err := zeroconf.Register(a.Name, serviceType, "local.", a.Port, a.TXTRecords(), nil)
	if err != nil {
		return fmt.Errorf("zeroconf register: %w", err)
	}
	defer server.Shutdown()

	logging.Info().
		Str("instance", a.Name).
		Str("service", serviceType).
		Int("port", a.Port).
		Msg("bonjour advertisement registered")

	<-ctx.Done()

	logging.Info().Str("instance", a.Name).Msg("bonjour advertisement withdrawn")
	return ctx.Err()
}

func (a *Advertiser) String() string {
	return "zeroconf:" + a.Name
}
