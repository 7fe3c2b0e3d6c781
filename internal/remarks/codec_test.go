package remarks

import (
	"testing"
)

func TestDecode(t *testing.T) {
	f := Decode("Name: Bob, Phone: 555-0100, Address: 12 Main St, Problem: drum not spinning")
	if f.Name != "Bob" {
		t.Errorf("Expected name Bob, got %q", f.Name)
	}
	if f.Phone != "555-0100" {
		t.Errorf("Expected phone 555-0100, got %q", f.Phone)
	}
	if f.Address != "12 Main St" {
		t.Errorf("Expected address '12 Main St', got %q", f.Address)
	}
	if f.Problem != "drum not spinning" {
		t.Errorf("Expected problem 'drum not spinning', got %q", f.Problem)
	}
}

func TestDecodeCaseInsensitiveSubstring(t *testing.T) {
	f := Decode("customer name: Alice, contact phone: 777")
	if f.Name != "Alice" {
		t.Errorf("Expected name Alice, got %q", f.Name)
	}
	if f.Phone != "777" {
		t.Errorf("Expected phone 777, got %q", f.Phone)
	}
}

func TestDecodeIgnoresMalformedSegments(t *testing.T) {
	f := Decode("no colon here, Phone: 555, ,")
	if f.Phone != "555" {
		t.Errorf("Expected phone 555, got %q", f.Phone)
	}
	if f.Name != "" {
		t.Errorf("Expected empty name, got %q", f.Name)
	}
}

func TestEncodeMergesExisting(t *testing.T) {
	out := Encode("Name: Bob", Fields{Phone: "555"})
	if out != "Name: Bob, Phone: 555" {
		t.Errorf("Expected 'Name: Bob, Phone: 555', got %q", out)
	}
}

func TestEncodeOverwritesSameKey(t *testing.T) {
	out := Encode("Name: Bob, Phone: 111", Fields{Phone: "555"})
	if out != "Name: Bob, Phone: 555" {
		t.Errorf("Expected phone overwritten, got %q", out)
	}
}

func TestEncodePreservesUnknownKeys(t *testing.T) {
	out := Encode("Name: Bob, Warranty: expired", Fields{Phone: "555"})
	if out != "Name: Bob, Phone: 555, Warranty: expired" {
		t.Errorf("Expected unknown key preserved, got %q", out)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Fields{Name: "Carol", Phone: "888", Address: "5 Oak Ave", Problem: "no cooling"}
	got := Decode(Encode("", in))
	if got != in {
		t.Errorf("Round trip mismatch: %+v != %+v", got, in)
	}
}
