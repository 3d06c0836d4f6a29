package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestRemoteError_Classification(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantRemote   bool
		wantNotFound bool
	}{
		{
			name:       "server error",
			err:        NewRemoteError(http.StatusInternalServerError, "boom"),
			wantRemote: true,
		},
		{
			name:         "not found",
			err:          NewRemoteError(http.StatusNotFound, "Product not found"),
			wantRemote:   true,
			wantNotFound: true,
		},
		{
			name:         "wrapped not found",
			err:          fmt.Errorf("search product: %w", NewRemoteError(http.StatusNotFound, "")),
			wantRemote:   true,
			wantNotFound: true,
		},
		{
			name: "validation",
			err:  ErrQuantityInvalid,
		},
		{
			name: "nil error",
			err:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRemote(tt.err); got != tt.wantRemote {
				t.Errorf("IsRemote() = %v, want %v", got, tt.wantRemote)
			}
			if got := IsNotFound(tt.err); got != tt.wantNotFound {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.wantNotFound)
			}
		})
	}
}

func TestNewRemoteError_DefaultMessage(t *testing.T) {
	err := NewRemoteError(http.StatusBadGateway, "")
	if err.Error() != "API error: 502" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestRemoteError_Unauthorized(t *testing.T) {
	if !errors.Is(NewRemoteError(http.StatusUnauthorized, "Token inválido"), ErrUnauthenticated) {
		t.Fatal("401 should be classified as unauthenticated")
	}
}

func TestIsValidation(t *testing.T) {
	for _, err := range []error{ErrQuantityInvalid, ErrNoBuyItems, ErrColorInvalid, ErrStatusInvalid} {
		if !IsValidation(err) {
			t.Errorf("%v should be a validation error", err)
		}
	}
	if IsValidation(ErrItemNotFound) {
		t.Error("ErrItemNotFound is not a validation error")
	}
	if !IsNotFound(ErrItemNotFound) {
		t.Error("ErrItemNotFound should be a not found error")
	}
}

func TestUserMessage(t *testing.T) {
	remote := fmt.Errorf("add item: %w", NewRemoteError(http.StatusBadRequest, "Producto sin stock"))
	if got := UserMessage(remote); got != "Producto sin stock" {
		t.Fatalf("remote message should be surfaced verbatim, got %q", got)
	}
	if got := UserMessage(ErrQuantityInvalid); got != ErrQuantityInvalid.Error() {
		t.Fatalf("unexpected message %q", got)
	}
	if UserMessage(nil) != "" {
		t.Fatal("nil error should produce empty message")
	}
}
