/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package manifest

import "testing"

func TestParseBasic(t *testing.T) {
	input := []byte("ACME/F001.json|abc123\nACME/CAT.csv|deadbeef\nmalformed-line-no-pipe\nACME/F002.json|def456\n")
	entries := Parse(input)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].SKU != "F001" || entries[0].Hash != "abc123" || entries[0].SupplierCode != "ACME" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].SKU != "F002" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestParseEmptyManifest(t *testing.T) {
	entries := Parse([]byte(""))
	if len(entries) != 0 {
		t.Fatalf("expected 0 entries, got %d", len(entries))
	}
}

func TestParsePreservesOrder(t *testing.T) {
	input := []byte("A/3.json|h3\nA/1.json|h1\nA/2.json|h2\n")
	entries := Parse(input)
	want := []string{"3", "1", "2"}
	for i, e := range entries {
		if e.SKU != want[i] {
			t.Fatalf("order not preserved at %d: got %s want %s", i, e.SKU, want[i])
		}
	}
}
