package netsync

import (
	"reflect"
	"testing"
)

func TestAuthorityPromotesLowestUID(t *testing.T) {
	a := NewAuthority("c")
	a.Join("b", "bea")
	a.Join("d", "dan")
	a.Join("a", "ann")
	a.SetOwner("a")

	if a.Leave("d") {
		t.Error("A non-owner leaving must not change ownership")
	}
	if !a.Leave("a") {
		t.Fatal("Owner leaving should change ownership")
	}
	if got := a.Owner(); got != "b" {
		t.Errorf("Expected b promoted, got %s", got)
	}
	if !a.IsOwner("b") || a.IsOwner("c") {
		t.Error("IsOwner disagrees with Owner")
	}
	if got := a.Members(); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Unexpected members %v", got)
	}
}

func TestAuthorityLeaveUnknown(t *testing.T) {
	a := NewAuthority("a")
	a.SetOwner("a")
	if a.Leave("zzz") {
		t.Error("Unknown member leaving should be a no-op")
	}
	if a.Owner() != "a" {
		t.Error("Owner should be unchanged")
	}
}

func TestPromoteLowest(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"x"}, "x"},
		{[]string{"m", "c", "q"}, "c"},
	}
	for _, tt := range tests {
		if got := PromoteLowest(tt.in); got != tt.want {
			t.Errorf("PromoteLowest(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAuthorityReplaceDropsDeparted(t *testing.T) {
	a := NewAuthority("c")
	a.Join("a", "ann")
	a.Join("b", "bea")
	a.Join("d", "dan")
	a.SetOwner("a")

	gone := a.Replace([]Member{{UID: "b", Username: "bea"}, {UID: "d", Username: "dan"}}, "b")
	if !reflect.DeepEqual(gone, []string{"a"}) {
		t.Errorf("Expected [a] dropped, got %v", gone)
	}
	if got := a.Members(); !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
		t.Errorf("Expected self kept alongside welcome members, got %v", got)
	}
	if a.Owner() != "b" || a.Username("d") != "dan" {
		t.Errorf("Unexpected owner %q or username %q", a.Owner(), a.Username("d"))
	}
	if a.Leave("a") {
		t.Error("A member dropped by the welcome must not affect ownership")
	}
	if !a.Leave("b") || a.Owner() != "c" {
		t.Errorf("Expected c promoted after b left, got %q", a.Owner())
	}
}
