package realtime

import (
    "encoding/json"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

// fakeMember buffers deliveries; setting full simulates a session that can
// no longer keep up.
type fakeMember struct {
    id     string
    msgs   [][]byte
    full   bool
    closed bool
}

func (m *fakeMember) ID() string { return m.id }

func (m *fakeMember) Deliver(msg []byte) bool {
    if m.full {
        return false
    }
    m.msgs = append(m.msgs, msg)
    return true
}

func (m *fakeMember) Close() { m.closed = true }

func (m *fakeMember) last(t *testing.T) Envelope {
    t.Helper()
    require.NotEmpty(t, m.msgs)
    var env Envelope
    require.NoError(t, json.Unmarshal(m.msgs[len(m.msgs)-1], &env))
    return env
}

func TestBroadcastSkipsOrigin(t *testing.T) {
    h := NewHub()
    origin := &fakeMember{id: "a"}
    sibling := &fakeMember{id: "b"}
    other := &fakeMember{id: "c"}
    h.Join(7, origin)
    h.Join(7, sibling)
    h.Join(8, other) // different showtime, must hear nothing

    h.SeatSelected(7, "A1", 42, "a")

    assert.Empty(t, origin.msgs, "originating session gets no echo")
    assert.Empty(t, other.msgs, "other showtimes are isolated")

    env := sibling.last(t)
    assert.Equal(t, EventSeatSelected, env.Event)
    var p SeatPayload
    require.NoError(t, json.Unmarshal(env.Data, &p))
    assert.Equal(t, "A1", p.SeatCode)
    assert.Equal(t, uint64(42), p.UserID)
}

func TestServerInitiatedClearReachesEveryone(t *testing.T) {
    h := NewHub()
    a := &fakeMember{id: "a"}
    b := &fakeMember{id: "b"}
    h.Join(7, a)
    h.Join(7, b)

    // Empty origin: the clear issued after a payment has no session.
    h.SeatsCleared(7, []string{"A1", "A2"}, 42, "")

    for _, m := range []*fakeMember{a, b} {
        env := m.last(t)
        assert.Equal(t, EventClearHeldSeats, env.Event)
        var p ClearPayload
        require.NoError(t, json.Unmarshal(env.Data, &p))
        assert.Equal(t, []string{"A1", "A2"}, p.SeatCodes)
        assert.Equal(t, uint64(42), p.UserID)
    }
}

func TestSendToTargetsOneMember(t *testing.T) {
    h := NewHub()
    a := &fakeMember{id: "a"}
    b := &fakeMember{id: "b"}
    h.Join(7, a)
    h.Join(7, b)

    h.SendTo(7, "a", EventInitHeldSeats, map[string]uint64{"A1": 9})

    require.Len(t, a.msgs, 1)
    assert.Empty(t, b.msgs)
    env := a.last(t)
    assert.Equal(t, EventInitHeldSeats, env.Event)

    // Unknown member is a no-op, not a panic.
    h.SendTo(7, "zz", EventInitHeldSeats, nil)
    h.SendTo(99, "a", EventInitHeldSeats, nil)
    require.Len(t, a.msgs, 1)
}

func TestSlowMemberEvicted(t *testing.T) {
    h := NewHub()
    slow := &fakeMember{id: "slow", full: true}
    fast := &fakeMember{id: "fast"}
    h.Join(7, slow)
    h.Join(7, fast)

    h.SeatSelected(7, "A1", 42, "")

    assert.True(t, slow.closed, "member that cannot take the message is closed")
    require.Len(t, fast.msgs, 1)

    // The evicted member is out of the group: later events skip it.
    h.SeatDeselected(7, "A1", 42, "")
    assert.Empty(t, slow.msgs)
    assert.Len(t, fast.msgs, 2)
}

func TestLeaveDropsEmptyGroup(t *testing.T) {
    h := NewHub()
    a := &fakeMember{id: "a"}
    h.Join(7, a)
    h.Leave(7, a)

    // Broadcasting into a vanished group is a no-op.
    h.SeatSelected(7, "A1", 42, "")
    assert.Empty(t, a.msgs)

    // Leaving twice is harmless.
    h.Leave(7, a)
}
