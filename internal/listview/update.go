package listview

// Update is an optimistic mutation as an explicit two-phase record: Begin
// applies the speculative state immediately, then exactly one of Commit
// (the remote accepted it) or Abort (roll the speculation back) settles
// it. Extra calls are no-ops, so failure paths stay deterministic.
type Update struct {
	rollback func()
	settled  bool
}

func Begin(apply, rollback func()) *Update {
	apply()
	return &Update{rollback: rollback}
}

func (u *Update) Commit() {
	u.settled = true
}

func (u *Update) Abort() {
	if u.settled {
		return
	}
	u.settled = true
	u.rollback()
}
