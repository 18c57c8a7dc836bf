package main

//
// BLOCK MATCHING
//

type lineRoleKind uint8

const (
	roleNone lineRoleKind = iota
	roleOpen
	roleMarker
	roleClose
)

// lineRole decides what a line means to the innermost open construct. '?'
// and '<>' directly inside an if chain are branch markers, as are '=' and
// '<>' directly inside a switch; elsewhere '?' opens a new chain.
func lineRole(k StmtKind, top StmtKind) lineRoleKind {
	switch {
	case k == StmtEnd:
		return roleClose
	case top == StmtIf && (k == StmtIf || k == StmtElse):
		return roleMarker
	case top == StmtSwitch && (k == StmtCase || k == StmtElse):
		return roleMarker
	case k.opensBlock():
		return roleOpen
	}
	return roleNone
}

// matchBranches returns the marker lines belonging to the construct opened
// at lines[start], followed by its closing '}'. end is exclusive.
func matchBranches(lines []string, start, end int) ([]int, error) {
	first := classify(lines[start]).Kind
	if !first.opensBlock() {
		return nil, fef("line %d does not open a block", start+1)
	}
	stack := []StmtKind{first}
	var markers []int
	for i := start + 1; i < end; i++ {
		k := classify(lines[i]).Kind
		switch lineRole(k, stack[len(stack)-1]) {
		case roleClose:
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return append(markers, i), nil
			}
		case roleMarker:
			if len(stack) == 1 {
				markers = append(markers, i)
			}
		case roleOpen:
			stack = append(stack, k)
		}
	}
	return nil, fef("unterminated %s starting at line %d", first, start+1)
}

// matchBlock returns the line of the '}' closing the block at lines[start].
func matchBlock(lines []string, start, end int) (int, error) {
	m, err := matchBranches(lines, start, end)
	if err != nil {
		return -1, err
	}
	return m[len(m)-1], nil
}

// findHandler looks for a '!' handler at the nesting level of from,
// stepping over nested blocks. -1 when there is none before end.
func findHandler(lines []string, from, end int) int {
	for i := from; i < end; i++ {
		k := classify(lines[i]).Kind
		if k == StmtHandler {
			return i
		}
		if k.opensBlock() {
			last, err := matchBlock(lines, i, end)
			if err != nil {
				return -1
			}
			i = last
		}
	}
	return -1
}
