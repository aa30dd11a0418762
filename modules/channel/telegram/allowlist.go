package telegram

// chatAllowList controls which chats the bridge operates in.
// An empty allow list denies everyone — security by default.
type chatAllowList struct {
	ids map[int64]struct{}
}

func newChatAllowList(ids []int64) *chatAllowList {
	a := &chatAllowList{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		a.ids[id] = struct{}{}
	}
	return a
}

// Allowed reports whether the chat ID is permitted.
func (a *chatAllowList) Allowed(id int64) bool {
	if a == nil || len(a.ids) == 0 {
		return false
	}
	_, ok := a.ids[id]
	return ok
}
