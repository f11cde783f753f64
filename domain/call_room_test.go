package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCallRoom_Join_Leave_Keeps_Order(t *testing.T) {
	req := require.New(t)
	room := NewCallRoom("room-1")

	req.True(room.Join("c1", "alice"))
	req.True(room.Join("c2", "bob"))
	req.False(room.Join("c1", "alice"))
	req.Equal([]string{"c1", "c2"}, room.ConnIDs())

	left, ok := room.Leave("c1")
	req.True(ok)
	req.Equal(RoomMember{ConnID: "c1", UserID: "alice"}, left)
	req.Equal([]RoomMember{{ConnID: "c2", UserID: "bob"}}, room.Members())

	_, ok = room.Leave("c1")
	req.False(ok)
	room.Leave("c2")
	req.True(room.Empty())
}
