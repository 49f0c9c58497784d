package memory

import (
	"context"
	"testing"

	"github.com/vietddude/mevwatch/internal/core/domain"
)

func alert(contract, txHash string, at domain.AttackType, detectedAt uint64) *domain.Alert {
	return &domain.Alert{
		ID:         txHash + "-id",
		ContractID: contract,
		AttackType: at,
		TxHash:     txHash,
		DetectedAt: detectedAt,
	}
}

func TestAlertRepo_SaveAndList(t *testing.T) {
	repo := NewAlertRepo()
	ctx := context.Background()

	if err := repo.Save(ctx, alert("0xC", "0x1", domain.AttackSandwich, 100)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(ctx, alert("0xC", "0x2", domain.AttackSandwich, 300)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(ctx, alert("0xOther", "0x3", domain.AttackArbitrage, 200)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := repo.ListByContract(ctx, "0xc", 10)
	if err != nil {
		t.Fatalf("ListByContract failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(out))
	}
	// Newest first
	if out[0].TxHash != "0x2" || out[1].TxHash != "0x1" {
		t.Errorf("Expected newest-first ordering, got %s %s", out[0].TxHash, out[1].TxHash)
	}

	count, err := repo.CountByContract(ctx, "0xC")
	if err != nil {
		t.Fatalf("CountByContract failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}
}

func TestAlertRepo_DuplicateIdentityIgnored(t *testing.T) {
	repo := NewAlertRepo()
	ctx := context.Background()

	first := alert("0xC", "0xAAA", domain.AttackFrontrunning, 100)
	first.Description = "first"
	retry := alert("0xc", "0xaaa", domain.AttackFrontrunning, 200)
	retry.Description = "retry"

	if err := repo.SaveBatch(ctx, []*domain.Alert{first, retry}); err != nil {
		t.Fatalf("SaveBatch failed: %v", err)
	}

	out, err := repo.ListByContract(ctx, "0xC", 10)
	if err != nil {
		t.Fatalf("ListByContract failed: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("Expected 1 alert after identity dedup, got %d", len(out))
	}
	if out[0].Description != "first" {
		t.Errorf("Expected first-seen alert kept, got %q", out[0].Description)
	}
}

func TestAlertRepo_ListLimit(t *testing.T) {
	repo := NewAlertRepo()
	ctx := context.Background()

	for i := uint64(0); i < 5; i++ {
		a := alert("0xC", "0x"+string(rune('a'+i)), domain.AttackOracle, 100+i)
		if err := repo.Save(ctx, a); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	out, err := repo.ListByContract(ctx, "0xC", 3)
	if err != nil {
		t.Fatalf("ListByContract failed: %v", err)
	}
	if len(out) != 3 {
		t.Errorf("Expected limit 3, got %d", len(out))
	}
	if out[0].DetectedAt != 104 {
		t.Errorf("Expected newest alert first, got %d", out[0].DetectedAt)
	}
}

func TestAlertRepo_SaveClones(t *testing.T) {
	repo := NewAlertRepo()
	ctx := context.Background()

	a := alert("0xC", "0x1", domain.AttackSandwich, 100)
	if err := repo.Save(ctx, a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	a.Description = "mutated after save"

	out, _ := repo.ListByContract(ctx, "0xC", 1)
	if out[0].Description != "" {
		t.Errorf("Stored alert should not see caller mutation, got %q", out[0].Description)
	}
}
