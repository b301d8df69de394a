package wire

import (
	"testing"
)

// TestNewRequestValidation tests construction-time validation of requests.
func TestNewRequestValidation(t *testing.T) {
	id := "6f792045-3d5f-4cf2-90f7-43a9e6f2b9bd"

	_, err := NewRequest(id, "connect", nil)
	if err != nil {
		t.Errorf("NewRequest with a UUID id: unexpected error %v", err)
	}

	_, err = NewRequest("not-a-uuid", "connect", nil)
	if err == nil {
		t.Errorf("NewRequest with a non-UUID id: expected an error")
	}

	_, err = NewRequest(id, "", nil)
	if err == nil {
		t.Errorf("NewRequest with an empty method: expected an error")
	}
}

// TestNewNotificationValidation tests construction-time validation of
// notifications.
func TestNewNotificationValidation(t *testing.T) {
	_, err := NewNotification("wake", nil)
	if err != nil {
		t.Errorf("NewNotification: unexpected error %v", err)
	}

	_, err = NewNotification("", nil)
	if err == nil {
		t.Errorf("NewNotification with an empty method: expected an error")
	}
}

// TestValidErrorCode tests the reserved-set bounds, including the custom
// server-error codes.
func TestValidErrorCode(t *testing.T) {
	valid := []int{
		ErrParse, ErrInvalidRequest, ErrMethodNotFound, ErrInvalidParams, ErrInternal,
		ErrCreateApplication, ErrReadApplication, ErrUpdateApplication,
		ErrDeleteApplication, ErrInvalidAction, ErrGrantPermission, ErrRevokePermission,
		-32099, -32000,
	}
	for _, code := range valid {
		if !ValidErrorCode(code) {
			t.Errorf("ValidErrorCode(%d) = false, want true", code)
		}
	}

	invalid := []int{0, -1, -32100, -31999, -32604, -32701, -32599}
	for _, code := range invalid {
		if ValidErrorCode(code) {
			t.Errorf("ValidErrorCode(%d) = true, want false", code)
		}
	}
}
