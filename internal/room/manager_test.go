package room

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCreateRoom(t *testing.T) {
	m := NewManager(time.Second)

	snap, playerID, token, err := m.CreateRoom("conn-1", "alice", "othello", "")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	if len(snap.Info.Code) != codeLength {
		t.Fatalf("code %q, want %d chars", snap.Info.Code, codeLength)
	}
	for _, ch := range snap.Info.Code {
		if !strings.ContainsRune(codeAlphabet, ch) {
			t.Fatalf("code %q contains %q, outside the alphabet", snap.Info.Code, ch)
		}
	}

	if snap.Info.HostID != playerID {
		t.Fatalf("host = %s, want creator %s", snap.Info.HostID, playerID)
	}
	if snap.Info.Status != StatusWaiting {
		t.Fatalf("status = %s, want waiting", snap.Info.Status)
	}
	if token == "" {
		t.Fatal("no session token minted")
	}
	if got := snap.Recipients["conn-1"]; got != playerID {
		t.Fatalf("recipients = %v", snap.Recipients)
	}
}

func TestCreateRoomUnknownGame(t *testing.T) {
	m := NewManager(time.Second)
	if _, _, _, err := m.CreateRoom("conn-1", "alice", "chess", ""); !errors.Is(err, ErrUnknownGame) {
		t.Fatalf("err = %v, want ErrUnknownGame", err)
	}
}

func TestJoinRoom(t *testing.T) {
	m := NewManager(time.Second)
	snap, hostID, _, err := m.CreateRoom("conn-1", "alice", "othello", "")
	if err != nil {
		t.Fatal(err)
	}
	code := snap.Info.Code

	joined, joinerID, token, err := m.JoinRoom(code, "conn-2", "bob", "")
	if err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	if len(joined.Info.Players) != 2 {
		t.Fatalf("players = %v", joined.Info.Players)
	}
	if joined.Info.HostID != hostID {
		t.Fatal("host changed on join")
	}
	if token == "" || joinerID == "" {
		t.Fatal("join ack missing ids")
	}

	// Othello caps at two players.
	if _, _, _, err := m.JoinRoom(code, "conn-3", "carol", ""); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("err = %v, want ErrRoomFull", err)
	}

	if _, _, _, err := m.JoinRoom("ZZZZ", "conn-4", "dave", ""); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestJoinStartedRoom(t *testing.T) {
	m := NewManager(time.Second)
	snap, _, _, _ := m.CreateRoom("conn-1", "alice", "aiuebattle", "")
	m.JoinRoom(snap.Info.Code, "conn-2", "bob", "")

	err := m.WithRoom("conn-1", func(r *Room, _ string) error {
		r.Status = StatusPlaying
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := m.JoinRoom(snap.Info.Code, "conn-3", "carol", ""); !errors.Is(err, ErrRoomStarted) {
		t.Fatalf("err = %v, want ErrRoomStarted", err)
	}
}

func TestSessionTokenHandling(t *testing.T) {
	m := NewManager(time.Second)

	// A free client-provided token is honored.
	_, _, token1, err := m.CreateRoom("conn-1", "alice", "othello", "my-token")
	if err != nil {
		t.Fatal(err)
	}
	if token1 != "my-token" {
		t.Fatalf("token = %q, want the provided one", token1)
	}

	// A colliding token gets replaced with a fresh one.
	_, _, token2, err := m.CreateRoom("conn-2", "bob", "othello", "my-token")
	if err != nil {
		t.Fatal(err)
	}
	if token2 == "my-token" || token2 == "" {
		t.Fatalf("colliding token reissued as %q", token2)
	}
}

func TestLeaveReassignsHost(t *testing.T) {
	m := NewManager(time.Second)
	snap, hostID, _, _ := m.CreateRoom("conn-1", "alice", "othello", "")
	_, joinerID, _, _ := m.JoinRoom(snap.Info.Code, "conn-2", "bob", "")

	left, err := m.Leave("conn-1")
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if left == nil {
		t.Fatal("room destroyed with a player remaining")
	}
	if left.Info.HostID != joinerID {
		t.Fatalf("host = %s, want surviving player %s", left.Info.HostID, joinerID)
	}
	if left.Info.HostID == hostID {
		t.Fatal("departed player still host")
	}
}

func TestLeaveDestroysEmptyRoom(t *testing.T) {
	m := NewManager(time.Second)
	m.CreateRoom("conn-1", "alice", "othello", "")

	snap, err := m.Leave("conn-1")
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if snap != nil {
		t.Fatal("snapshot returned for a destroyed room")
	}
	if rooms := m.Rooms(); len(rooms) != 0 {
		t.Fatalf("rooms = %v, want none", rooms)
	}

	if _, err := m.Leave("conn-1"); !errors.Is(err, ErrNotInRoom) {
		t.Fatalf("second leave err = %v, want ErrNotInRoom", err)
	}
}

func TestReconnectWithinGrace(t *testing.T) {
	m := NewManager(time.Second)
	snap, _, _, _ := m.CreateRoom("conn-1", "alice", "othello", "")
	_, joinerID, token, _ := m.JoinRoom(snap.Info.Code, "conn-2", "bob", "")

	expired := make(chan struct{})
	m.Disconnect("conn-2", func(*Snapshot) { close(expired) })

	res, err := m.Reconnect(token, "conn-2b")
	if err != nil {
		t.Fatalf("Reconnect: %v", err)
	}
	if res.PlayerID != joinerID {
		t.Fatalf("resumed player = %s, want %s", res.PlayerID, joinerID)
	}
	if len(res.Snapshot.Info.Players) != 2 {
		t.Fatal("membership changed across the disconnect")
	}
	if _, ok := res.Snapshot.Recipients["conn-2b"]; !ok {
		t.Fatal("new connection not mapped into the room")
	}

	select {
	case <-expired:
		t.Fatal("grace timer fired despite reconnect")
	case <-time.After(1500 * time.Millisecond):
	}
}

func TestGraceExpiryRemovesPlayer(t *testing.T) {
	m := NewManager(20 * time.Millisecond)
	snap, hostID, _, _ := m.CreateRoom("conn-1", "alice", "othello", "")
	_, _, token, _ := m.JoinRoom(snap.Info.Code, "conn-2", "bob", "")

	var mu sync.Mutex
	var got *Snapshot
	done := make(chan struct{})
	m.Disconnect("conn-2", func(s *Snapshot) {
		mu.Lock()
		got = s
		mu.Unlock()
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("grace timer never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	if got == nil {
		t.Fatal("room destroyed though the host stayed")
	}
	if len(got.Info.Players) != 1 || got.Info.Players[0].ID != hostID {
		t.Fatalf("players after expiry = %v", got.Info.Players)
	}

	// The session died with the timer.
	if _, err := m.Reconnect(token, "conn-2b"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("reconnect after expiry err = %v, want ErrSessionNotFound", err)
	}
}

func TestGraceExpiryDestroysEmptyRoom(t *testing.T) {
	m := NewManager(20 * time.Millisecond)
	m.CreateRoom("conn-1", "alice", "othello", "")

	m.Disconnect("conn-1", func(s *Snapshot) {
		t.Error("onExpired ran for a destroyed room")
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(m.Rooms()) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("room survived its last player's expiry")
}

func TestGraceExpiryReassignsHost(t *testing.T) {
	m := NewManager(20 * time.Millisecond)
	snap, _, _, _ := m.CreateRoom("conn-1", "alice", "othello", "")
	_, joinerID, _, _ := m.JoinRoom(snap.Info.Code, "conn-2", "bob", "")

	done := make(chan *Snapshot, 1)
	m.Disconnect("conn-1", func(s *Snapshot) { done <- s })

	select {
	case s := <-done:
		if s == nil {
			t.Fatal("room destroyed though a player stayed")
		}
		if s.Info.HostID != joinerID {
			t.Fatalf("host = %s, want %s", s.Info.HostID, joinerID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("grace timer never fired")
	}
}

func TestReconnectUnknownToken(t *testing.T) {
	m := NewManager(time.Second)
	if _, err := m.Reconnect("never-issued", "conn-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestWithRoomNotInRoom(t *testing.T) {
	m := NewManager(time.Second)
	err := m.WithRoom("ghost", func(*Room, string) error { return nil })
	if !errors.Is(err, ErrNotInRoom) {
		t.Fatalf("err = %v, want ErrNotInRoom", err)
	}
}

func TestStatsAndDetail(t *testing.T) {
	m := NewManager(time.Second)
	snap, hostID, _, _ := m.CreateRoom("conn-1", "alice", "citychase", "")
	m.JoinRoom(snap.Info.Code, "conn-2", "bob", "")

	stats := m.Stats()
	if stats.RoomCount != 1 || stats.SessionCount != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.RoomsByStatus[StatusWaiting] != 1 {
		t.Fatalf("RoomsByStatus = %v", stats.RoomsByStatus)
	}

	detail, ok := m.RoomDetail(snap.Info.Code)
	if !ok {
		t.Fatal("RoomDetail miss for a live room")
	}
	if len(detail.Players) != 2 {
		t.Fatalf("detail players = %v", detail.Players)
	}
	for _, p := range detail.Players {
		if !p.Connected {
			t.Fatalf("player %s reported disconnected", p.ID)
		}
		if p.IsHost != (p.ID == hostID) {
			t.Fatalf("host flag wrong for %s", p.ID)
		}
	}

	if _, ok := m.RoomDetail("ZZZZ"); ok {
		t.Fatal("RoomDetail hit for unknown code")
	}
}
