package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/apperrors"
)

func TestEnsureRegistered_IsIdempotent(t *testing.T) {
	repo := newMockFarmerRepo()
	svc := NewFarmerService(repo, zap.NewNop())
	farmerID := uuid.New()
	ctx := context.Background()

	if err := svc.EnsureRegistered(ctx, farmerID, "Amina", "amina@example.com"); err != nil {
		t.Fatal(err)
	}
	if err := svc.EnsureRegistered(ctx, farmerID, "Amina", "new@example.com"); err != nil {
		t.Fatal(err)
	}

	farmer, err := svc.GetProfile(ctx, farmerID)
	if err != nil {
		t.Fatal(err)
	}
	if farmer.Email != "new@example.com" {
		t.Errorf("email = %q, want refreshed address", farmer.Email)
	}
	if repo.upserts != 2 {
		t.Errorf("upserts = %d", repo.upserts)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := newMockFarmerRepo()
	svc := NewFarmerService(repo, zap.NewNop())
	farmerID := uuid.New()
	ctx := context.Background()

	if err := svc.EnsureRegistered(ctx, farmerID, "Amina", "amina@example.com"); err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateProfile(ctx, farmerID, &ProfileUpdate{
		Name:    "Amina W.",
		Email:   "amina@example.com",
		Phone:   "+254700000000",
		Address: "Nakuru",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Amina W." || updated.Phone != "+254700000000" {
		t.Errorf("updated profile = %+v", updated)
	}

	if _, err := svc.UpdateProfile(ctx, farmerID, &ProfileUpdate{Email: "x@example.com"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("missing name should fail validation, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, farmerID, &ProfileUpdate{Name: "A"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("missing email should fail validation, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, uuid.New(), &ProfileUpdate{Name: "A", Email: "a@b.c"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown farmer should be not-found, got %v", err)
	}
}
