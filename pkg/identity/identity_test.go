package identity

import (
	"testing"

	"chatsync/pkg/models"
)

func TestDerivePrefersRealName(t *testing.T) {
	m := models.Message{SenderName: "Alice", SenderNumber: "+1 555 0100", SenderAddr: "15550100@c.us"}
	if got := Derive(m); got != "Alice" {
		t.Errorf("got %q, want Alice", got)
	}
}

func TestDeriveSkipsSyntheticName(t *testing.T) {
	m := models.Message{SenderName: "15550100123@g.us", SenderNumber: "+1 555 0100 123"}
	if got := Derive(m); got != "+1 555 0100 123" {
		t.Errorf("got %q, want the phone number", got)
	}
	for _, jid := range []string{"123456@lid", "123456@c.us", "123456@s.whatsapp.net"} {
		if got := Derive(models.Message{SenderName: jid, SenderNumber: "+1 555 0100"}); got != "+1 555 0100" {
			t.Errorf("%s: got %q, want the phone number", jid, got)
		}
	}
}

func TestDeriveFallsBackToAddress(t *testing.T) {
	m := models.Message{SenderAddr: "15550100@c.us"}
	if got := Derive(m); got != "15550100" {
		t.Errorf("got %q, want address token before @", got)
	}
	m = models.Message{SenderAddr: "bare-token"}
	if got := Derive(m); got != "bare-token" {
		t.Errorf("got %q, want bare-token", got)
	}
}

func TestDeriveNonPhoneNumberIsLastResort(t *testing.T) {
	// a number field that is not phone-shaped loses to the address
	m := models.Message{SenderNumber: "abc", SenderAddr: "15550100@c.us"}
	if got := Derive(m); got != "15550100" {
		t.Errorf("got %q, want address token", got)
	}
	// but with no address it is still better than nothing
	m = models.Message{SenderNumber: "abc"}
	if got := Derive(m); got != "abc" {
		t.Errorf("got %q, want abc", got)
	}
}

func TestDeriveEmpty(t *testing.T) {
	if got := Derive(models.Message{}); got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if got := Derive(models.Message{SenderName: "   "}); got != "" {
		t.Errorf("whitespace name: got %q, want empty", got)
	}
}
