package mtgutil

import "testing"

func TestCardUUIDDeterministic(t *testing.T) {
	a := CardUUID("abc123", "a", "Lightning Bolt", "")
	b := CardUUID("abc123", "a", "Lightning Bolt", "")
	if a != b {
		t.Fatalf("expected identical uuids, got %s and %s", a, b)
	}
	if a.Version().String() != "VERSION_5" {
		t.Fatalf("expected version 5, got %s", a.Version())
	}
}

func TestCardUUIDDiffersBySide(t *testing.T) {
	a := CardUUID("abc123", "a", "Fire // Ice", "Fire")
	b := CardUUID("abc123", "b", "Fire // Ice", "Ice")
	if a == b {
		t.Fatal("expected different uuids for different sides")
	}
}

func TestTokenUUIDDiffersFromCardUUID(t *testing.T) {
	card := CardUUID("abc123", "a", "Goblin", "")
	token := TokenUUID("abc123", "a", "Goblin", "")
	if card == token {
		t.Fatal("token namespace must not collide with card namespace")
	}
}
