// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

package zeroconf

import (
	"strings"
	"testing"
)

func TestTXTRecords(t *testing.T) {
	a := &Advertiser{
		Name:              "Attic",
		Port:              3689,
		PasswordProtected: true,
		MachineID:         0x1122334455667788,
		DatabaseID:        0xAABBCCDDEEFF0011,
	}

	records := a.TXTRecords()
	want := map[string]string{
		"txtvers":      "1",
		"Machine Name": "Attic",
		"Machine ID":   "1122334455667788",
		"Database ID":  "AABBCCDDEEFF0011",
		"Password":     "1",
	}

	got := make(map[string]string, len(records))
	for _, r := range records {
		parts := strings.SplitN(r, "=", 2)
		if len(parts) != 2 {
			t.Fatalf("malformed TXT record %q", r)
		}
		got[parts[0]] = parts[1]
	}

	for k, v := range want {
		if got[k] != v {
			t.Errorf("TXT %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestTXTRecordsNoPassword(t *testing.T) {
	a := &Advertiser{Name: "Attic", Port: 3689}
	for _, r := range a.TXTRecords() {
		if r == "Password=1" {
			t.Error("expected Password=0 without a password")
		}
	}
}
