package domain

// RoomMember is one connection inside a call room.
type RoomMember struct {
	ConnID string
	UserID string
}

// CallRoom groups the connections that exchange WebRTC signals for one call.
// Members keep their join order.
type CallRoom struct {
	ID      string
	members []RoomMember
}

func NewCallRoom(id string) *CallRoom {
	return &CallRoom{ID: id}
}

// Join reports false when the connection was already a member.
func (r *CallRoom) Join(connID, userID string) bool {
	if _, ok := r.member(connID); ok {
		return false
	}
	r.members = append(r.members, RoomMember{ConnID: connID, UserID: userID})
	return true
}

func (r *CallRoom) Leave(connID string) (RoomMember, bool) {
	i, ok := r.member(connID)
	if !ok {
		return RoomMember{}, false
	}
	left := r.members[i]
	r.members = append(r.members[:i], r.members[i+1:]...)
	return left, true
}

func (r *CallRoom) Members() []RoomMember {
	return append([]RoomMember(nil), r.members...)
}

func (r *CallRoom) ConnIDs() []string {
	ids := make([]string, 0, len(r.members))
	for _, m := range r.members {
		ids = append(ids, m.ConnID)
	}
	return ids
}

func (r *CallRoom) Empty() bool { return len(r.members) == 0 }

func (r *CallRoom) member(connID string) (int, bool) {
	for i, m := range r.members {
		if m.ConnID == connID {
			return i, true
		}
	}
	return 0, false
}
