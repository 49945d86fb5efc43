package job

import "testing"

func TestEncodeDecode_RegistrationConfirmation(t *testing.T) {
	payload := RegistrationConfirmationPayload{
		RegistrationID: "r-123",
		EventID:        "e-456",
		EventName:      "Open Day",
		Name:           "Ada Okafor",
		Email:          "ada@example.com",
	}

	b, err := EncodeRegistrationConfirmation(payload)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	decoded, err := DecodeRegistrationConfirmation(b)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if decoded != payload {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, payload)
	}
}

func TestDecodeRegistrationConfirmation_Garbage(t *testing.T) {
	if _, err := DecodeRegistrationConfirmation([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestNewJobDefaults(t *testing.T) {
	j := New(CreateRequest{Type: TypeRegistrationConfirmation})

	if j.Status != StatusPending {
		t.Fatalf("got status %q, want pending", j.Status)
	}
	if j.MaxAttempts != 5 {
		t.Fatalf("got maxAttempts %d, want 5", j.MaxAttempts)
	}
	if j.RunAt.IsZero() {
		t.Fatal("runAt must default to now")
	}
	if j.ID == "" {
		t.Fatal("id must be generated")
	}
}
