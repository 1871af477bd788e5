package filter

// Match reports whether s matches pattern in full. '*' matches any run of
// runes including the empty one and '?' matches exactly one rune.
func Match(pattern, s string) bool {
	p := []rune(pattern)
	r := []rune(s)

	pi, si := 0, 0
	// position of the last '*' and the rune it was matched up to
	star, mark := -1, 0

	for si < len(r) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == r[si]) && p[pi] != '*':
			pi++
			si++
		case pi < len(p) && p[pi] == '*':
			star = pi
			mark = si
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}

	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
