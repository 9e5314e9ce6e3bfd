package ledger

import "testing"

func TestAssetIdRoundTrip(t *testing.T) {
	id := AssetId{
		Definition: AssetDefinitionId{Name: "xor", Domain: "wonderland"},
		Account:    AccountId{Domain: "wonderland", Signatory: "ed0120deadbeef"},
	}
	s := id.String()
	const want = "xor#wonderland#ed0120deadbeef@wonderland"
	if s != want {
		t.Fatalf("String() = %q, want %q", s, want)
	}
	parsed, err := ParseAssetId(s)
	if err != nil {
		t.Fatalf("ParseAssetId: %v", err)
	}
	if parsed != id {
		t.Fatalf("round trip mismatch: got %+v, want %+v", parsed, id)
	}
}

func TestParseAccountIdRejectsMissingAt(t *testing.T) {
	if _, err := ParseAccountId("ed0120deadbeef"); err == nil {
		t.Fatalf("expected error for missing '@'")
	}
}

func TestParseDomainIdRejectsReservedChars(t *testing.T) {
	if _, err := ParseDomainId("wonder#land"); err == nil {
		t.Fatalf("expected error for reserved character")
	}
}
