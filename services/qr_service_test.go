package services

import (
	"errors"
	"testing"
)

func TestIssueRotatesToken(t *testing.T) {
	db := openTestDB(t)
	table := seedTable(t, db, "F1")

	svc := NewQRService(db)
	_, first, png, err := svc.Issue(table.ID)
	if err != nil {
		t.Fatalf("first Issue() error = %v", err)
	}
	if first == "" {
		t.Fatal("issued token is empty")
	}
	if len(png) == 0 {
		t.Error("issued QR image is empty")
	}

	updated, second, _, err := svc.Issue(table.ID)
	if err != nil {
		t.Fatalf("second Issue() error = %v", err)
	}
	if second == first {
		t.Error("rotation produced the same token")
	}
	if updated.CurrentQRToken != second {
		t.Error("table does not store the new token")
	}
	if updated.PreviousQRToken != first {
		t.Error("table does not keep the rotated-out token for auditing")
	}
	if updated.QRRotatedAt == nil {
		t.Error("rotation timestamp not recorded")
	}
}

func TestValidateToken(t *testing.T) {
	db := openTestDB(t)
	table := seedTable(t, db, "F2")

	svc := NewQRService(db)
	_, first, _, err := svc.Issue(table.ID)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	resolved, err := svc.Validate(first)
	if err != nil {
		t.Fatalf("Validate(current) error = %v", err)
	}
	if resolved.ID != table.ID {
		t.Errorf("token resolved to table %d, want %d", resolved.ID, table.ID)
	}

	if _, err := svc.Validate("not-a-jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Validate(garbage) error = %v, want ErrTokenInvalid", err)
	}

	// Rotate; the old token still has a valid signature but is no longer the
	// table's stored token.
	if _, _, _, err := svc.Issue(table.ID); err != nil {
		t.Fatalf("rotation Issue() error = %v", err)
	}
	if _, err := svc.Validate(first); !errors.Is(err, ErrTokenStale) {
		t.Errorf("Validate(rotated-out) error = %v, want ErrTokenStale", err)
	}
}
