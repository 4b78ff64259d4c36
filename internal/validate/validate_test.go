package validate

import "testing"

func TestID(t *testing.T) {
	if _, ok := ID("b-1984"); !ok {
		t.Fatal("plain id rejected")
	}
	for _, bad := range []string{"", "  ", "1' OR 1=1", "a/b", "x;drop table books"} {
		if _, ok := ID(bad); ok {
			t.Fatalf("accepted %q", bad)
		}
	}
}

func TestQtyClamps(t *testing.T) {
	cases := map[string]int{"": 1, "abc": 1, "-3": 1, "0": 1, "7": 7, "999": 50}
	for in, want := range cases {
		if got := Qty(in); got != want {
			t.Fatalf("Qty(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestPaymentMethod(t *testing.T) {
	for _, ok := range []string{"cash", "CARD", " transfer "} {
		if _, valid := PaymentMethod(ok); !valid {
			t.Fatalf("rejected %q", ok)
		}
	}
	if _, valid := PaymentMethod("BITCOIN"); valid {
		t.Fatal("accepted unknown method")
	}
}

func TestMoney(t *testing.T) {
	if d, ok := Money(""); !ok || !d.IsZero() {
		t.Fatal("empty should parse as zero")
	}
	if d, ok := Money("232.00"); !ok || d.String() != "232" {
		t.Fatalf("got %s %v", d, ok)
	}
	for _, bad := range []string{"-5", "12,50", "abc"} {
		if _, ok := Money(bad); ok {
			t.Fatalf("accepted %q", bad)
		}
	}
}

func TestPassword(t *testing.T) {
	if !Password("Passw0rd!") {
		t.Fatal("seed password rejected")
	}
	for _, bad := range []string{"short1!", "alllowercase1!", "NOLOWER1!", "NoDigits!!", "NoSymbol11", "Way2LongPassword!!!!!!"} {
		if Password(bad) {
			t.Fatalf("accepted %q", bad)
		}
	}
}

func TestGenre(t *testing.T) {
	if g, ok := Genre("fic"); !ok || g != "FIC" {
		t.Fatalf("got %q %v", g, ok)
	}
	if _, ok := Genre("POETRY"); ok {
		t.Fatal("accepted unknown genre")
	}
}
