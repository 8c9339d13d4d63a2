package core

import "testing"

func TestValidateRoomID(t *testing.T) {
	valid := []string{"001", "050", "099", "100"}
	for _, id := range valid {
		if err := ValidateRoomID(id); err != nil {
			t.Errorf("ValidateRoomID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{"", "0", "01", "000", "101", "999", "0001", "abc", "1a2", " 01", "01 "}
	for _, id := range invalid {
		if err := ValidateRoomID(id); err == nil {
			t.Errorf("ValidateRoomID(%q) = nil, want error", id)
		}
	}
}

func TestRoomIndexMembershipInvariant(t *testing.T) {
	idx := NewRoomIndex()
	a := NewClient("a")
	b := NewClient("b")

	idx.Join(a, "001")
	idx.Join(b, "001")
	if idx.MemberCount("001") != 2 {
		t.Fatalf("count = %d", idx.MemberCount("001"))
	}

	if !idx.Leave(a, "001") {
		t.Fatal("leave reported non-member")
	}
	if idx.Leave(a, "001") {
		t.Fatal("double leave succeeded")
	}
	if idx.MemberCount("001") != 1 {
		t.Fatalf("count = %d", idx.MemberCount("001"))
	}

	// Emptied sets are removed, not tombstoned.
	idx.Leave(b, "001")
	if got := idx.Counts(); len(got) != 0 {
		t.Fatalf("empty room still listed: %+v", got)
	}
}

func TestRoomIndexCountsOrdered(t *testing.T) {
	idx := NewRoomIndex()
	idx.Join(NewClient("a"), "042")
	idx.Join(NewClient("b"), "003")
	idx.Join(NewClient("c"), "003")
	idx.Join(NewClient("d"), "100")

	counts := idx.Counts()
	if len(counts) != 3 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	want := []RoomCount{{"003", 2}, {"042", 1}, {"100", 1}}
	for i, w := range want {
		if counts[i] != w {
			t.Fatalf("counts[%d] = %+v, want %+v", i, counts[i], w)
		}
	}
}

func TestRoomIndexBroadcastReachesAllMembers(t *testing.T) {
	idx := NewRoomIndex()
	a := NewClient("a")
	b := NewClient("b")
	outside := NewClient("c")
	idx.Join(a, "007")
	idx.Join(b, "007")
	idx.Join(outside, "008")

	idx.Broadcast("007", &Event{Kind: EventUserJoined, Room: "007"})

	for _, c := range []*Client{a, b} {
		select {
		case ev := <-c.Events:
			if ev.Room != "007" {
				t.Fatalf("unexpected event: %+v", ev)
			}
		default:
			t.Fatalf("client %s missed broadcast", c.ID)
		}
	}
	select {
	case ev := <-outside.Events:
		t.Fatalf("leaked across rooms: %+v", ev)
	default:
	}
}
