package main

import (
	"strconv"
	str "strings"
)

/* expect_args()
 *  called by stdlib functions to validate argument kinds before they act.
 *  variants is the number of accepted shapes; each shape in types is an
 *  argument count followed by that many kind names ("any" matches all).
 *  e.g. expect_args("round", args, 2, "1", "number", "2", "number", "number")
 */
func expect_args(name string, args []Value, variants int, types ...string) (bool, error) {

	next := 0
	var typeErrs []string
	counts := make([]string, 0, variants)

	for v := 0; v < variants; v++ {
		if next >= len(types) {
			break
		}
		nc, err := strconv.Atoi(types[next])
		if err != nil {
			return false, fef("internal error in %s(): bad argument shape", name)
		}
		next++
		counts = append(counts, types[next-1])
		if len(args) != nc {
			next += nc
			continue
		}

		matched := true
		for n := 0; n < nc; n++ {
			want := types[next+n]
			if want == "any" || args[n].kind.String() == want {
				continue
			}
			typeErrs = append(typeErrs, sf("argument %d - %s expected (got %s)", n+1, want, args[n].kind))
			matched = false
			break
		}
		next += nc
		if matched {
			return true, nil
		}
	}

	if len(typeErrs) == 0 {
		return false, fef("%s() takes %s argument(s), got %d", name, str.Join(counts, " or "), len(args))
	}
	return false, fef("invalid arguments in %s(): %s", name, str.Join(typeErrs, "; "))
}

// intArg truncates a number argument toward zero.
func intArg(v Value) int {
	return int(v.num)
}
