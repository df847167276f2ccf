package rules

import (
	"github.com/dylhunn/dragontoothmg"
)

const seventyFiveMoveLimit = 150

// state captures the information we need to reason about repetitions and draws.
// States are never modified once pushed, so copies of a stack share them.
type state struct {
	Hash   uint64
	Rule50 int
	prev   *state
}

type stateStack struct {
	top *state
}

// reset rebuilds the stack so that it only contains the current board.
func (s *stateStack) reset(board *dragontoothmg.Board) {
	s.top = nil
	s.push(board)
}

func (s *stateStack) push(board *dragontoothmg.Board) {
	s.top = &state{
		Hash:   board.Hash(),
		Rule50: int(board.Halfmoveclock),
		prev:   s.top,
	}
}

func (s *stateStack) pop() {
	if s.top == nil || s.top.prev == nil {
		return
	}
	s.top = s.top.prev
}

func (s stateStack) seventyFiveMoves() bool {
	return s.top != nil && s.top.Rule50 >= seventyFiveMoveLimit
}

// repetitions counts occurrences of the current position, itself included,
// since the last irreversible move.
func (s stateStack) repetitions() int {
	if s.top == nil {
		return 0
	}
	count := 0
	for st, i := s.top, 0; st != nil && i <= s.top.Rule50; st, i = st.prev, i+1 {
		if st.Hash == s.top.Hash {
			count++
		}
	}
	return count
}
