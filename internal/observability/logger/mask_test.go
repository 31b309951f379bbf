package logger

import "testing"

func TestMaskLocatorMasksQueryCredentials(t *testing.T) {
	got := MaskLocator("https://rates.example.com/hotel/42?checkin={checkin}&api_key=sk_abcdef1234")
	want := "https://rates.example.com/hotel/42?api_key=****1234&checkin=%7Bcheckin%7D"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskLocatorLeavesPlainURLs(t *testing.T) {
	locator := "https://rates.example.com/hotel/42"
	if got := MaskLocator(locator); got != locator {
		t.Fatalf("expected %q, got %q", locator, got)
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey("key_12345678"); got != "****5678" {
		t.Fatalf("expected masked key, got %q", got)
	}
	if got := MaskAPIKey("abc"); got != "****abc" {
		t.Fatalf("expected short value fully masked, got %q", got)
	}
}
