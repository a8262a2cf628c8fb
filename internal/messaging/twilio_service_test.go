package messaging

import (
	"testing"
)

func clearTwilioEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_FROM_NUMBER", "")
}

func TestNewTwilioServiceRequiresCredentials(t *testing.T) {
	clearTwilioEnv(t)
	if _, err := NewTwilioService(); err == nil {
		t.Fatal("expected error with no credentials")
	}
	if _, err := NewTwilioService(WithAccountSID("AC123")); err == nil {
		t.Fatal("expected error with partial credentials")
	}
}

func TestNewTwilioServiceFromOptions(t *testing.T) {
	clearTwilioEnv(t)
	svc, err := NewTwilioService(
		WithAccountSID("AC123"),
		WithAuthToken("token"),
		WithFromNumber("+12025550100"),
	)
	if err != nil {
		t.Fatalf("NewTwilioService: %v", err)
	}
	if svc.from != "+12025550100" {
		t.Errorf("from = %q", svc.from)
	}
}

func TestNewTwilioServiceFromEnvironment(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("TWILIO_FROM_NUMBER", "+12025550100")
	svc, err := NewTwilioService()
	if err != nil {
		t.Fatalf("NewTwilioService: %v", err)
	}
	if svc.from != "+12025550100" {
		t.Errorf("from = %q", svc.from)
	}
}

func TestValidateAndCanonicalizeRecipient(t *testing.T) {
	svc := &TwilioService{}

	cases := []struct {
		input string
		want  string
	}{
		{"+12025550182", "+12025550182"},
		{"+1 202-555-0182", "+12025550182"},
		{"+9779828126222", "+9779828126222"},
		{"whatsapp:+12025550182", "whatsapp:+12025550182"},
		{"whatsapp:+1 202-555-0182", "whatsapp:+12025550182"},
	}
	for _, c := range cases {
		got, err := svc.ValidateAndCanonicalizeRecipient(c.input)
		if err != nil {
			t.Errorf("ValidateAndCanonicalizeRecipient(%q): %v", c.input, err)
			continue
		}
		if got != c.want {
			t.Errorf("ValidateAndCanonicalizeRecipient(%q) = %q, want %q", c.input, got, c.want)
		}
	}

	for _, input := range []string{"", "hello", "2025550182", "whatsapp:", "whatsapp:hello"} {
		if got, err := svc.ValidateAndCanonicalizeRecipient(input); err == nil {
			t.Errorf("ValidateAndCanonicalizeRecipient(%q) = %q, expected error", input, got)
		}
	}
}
