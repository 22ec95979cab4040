/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package jobs

import "testing"

func TestValidateQueueAndState(t *testing.T) {
	if err := ValidateQueueAndState(QueueProductFamily, StateFailed); err != nil {
		t.Fatalf("expected valid combination to pass, got %v", err)
	}
	if err := ValidateQueueAndState("", ""); err != nil {
		t.Fatalf("expected empty queue/state to pass, got %v", err)
	}
	if err := ValidateQueueAndState("no-such-queue", ""); err == nil {
		t.Fatal("expected unknown queue to be rejected")
	}
	if err := ValidateQueueAndState(QueueImageUpload, "no-such-state"); err == nil {
		t.Fatal("expected unknown state to be rejected")
	}
}

func TestValidatePagination(t *testing.T) {
	if err := ValidatePagination(1, 20); err != nil {
		t.Fatalf("expected valid pagination to pass, got %v", err)
	}
	if err := ValidatePagination(0, 20); err == nil {
		t.Fatal("expected page < 1 to be rejected")
	}
	if err := ValidatePagination(1, 0); err == nil {
		t.Fatal("expected page_size < 1 to be rejected")
	}
	if err := ValidatePagination(1, 101); err == nil {
		t.Fatal("expected page_size > 100 to be rejected")
	}
}
