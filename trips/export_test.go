package trips

import (
	"strings"
	"testing"
)

func TestInvitePayloadRoundTrip(t *testing.T) {
	payload := InvitePayload("trip123", "u1")
	if !strings.HasPrefix(payload, "trip123|u1|") {
		t.Fatalf("payload = %q", payload)
	}

	tripID, ok := VerifyInvitePayload(payload)
	if !ok || tripID != "trip123" {
		t.Errorf("verify = %q, %v", tripID, ok)
	}
}

func TestVerifyInvitePayloadTampered(t *testing.T) {
	payload := InvitePayload("trip123", "u1")
	tampered := strings.Replace(payload, "trip123", "trip999", 1)
	if _, ok := VerifyInvitePayload(tampered); ok {
		t.Error("tampered payload verified")
	}
	if _, ok := VerifyInvitePayload("garbage"); ok {
		t.Error("garbage payload verified")
	}
}
