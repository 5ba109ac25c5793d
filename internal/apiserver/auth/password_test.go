package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"restaurant-reviews/internal/shared/model"
)

func TestHasher_HashAndCheck(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("Hash() returned the plain password")
	}
	if !h.Check("s3cret", hash) {
		t.Error("Check() with correct password = false")
	}
	if h.Check("wrong", hash) {
		t.Error("Check() with wrong password = true")
	}
}

func TestHasher_InvalidPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	tests := []struct {
		name     string
		password string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("a", 80)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Hash(tt.password)
			if !errors.Is(err, model.ErrInvalid) {
				t.Fatalf("Hash() error = %v, want validation error", err)
			}
			var ve *model.ValidationError
			if !errors.As(err, &ve) || ve.Field != "password" {
				t.Errorf("Hash() error = %#v, want password field error", err)
			}
		})
	}
}

func TestHasher_MaxLength(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	pw := strings.Repeat("a", MaxPasswordBytes)
	hash, err := h.Hash(pw)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !h.Check(pw, hash) {
		t.Error("Check() with 72-byte password = false")
	}
}

func TestNewHasher_Cost(t *testing.T) {
	tests := []struct {
		cost int
		want int
	}{
		{bcrypt.MinCost, bcrypt.MinCost},
		{10, 10},
		{0, DefaultCost},
		{bcrypt.MaxCost + 1, DefaultCost},
	}
	for _, tt := range tests {
		if got := NewHasher(tt.cost).Cost; got != tt.want {
			t.Errorf("NewHasher(%d).Cost = %d, want %d", tt.cost, got, tt.want)
		}
	}
}

func TestHasher_CheckGarbageHash(t *testing.T) {
	if NewHasher(bcrypt.MinCost).Check("x", "not-a-hash") {
		t.Error("Check() accepted a malformed hash")
	}
}
