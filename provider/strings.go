package fdp

// escapeByte is the backslash that terminates or escapes within a
// random-length string.
const escapeByte = 0x5C

// scanState tracks the two-state automaton driving the random-length
// string scan: either reading plain bytes or having just consumed an
// escape byte whose meaning depends on what follows.
type scanState uint8

const (
	scanPlain scanState = iota
	scanSawEscape
)

// ConsumeRandomLengthString scans forward from the front of the buffer
// and returns the accumulated text. Scanning stops when the output
// reaches maxLength, the buffer is exhausted, or a lone backslash is
// met. A doubled backslash contributes a single literal backslash; a
// lone backslash (including one that is the final buffer byte) acts as
// a terminator, is not part of the result, and leaves the byte after
// it, if any, unconsumed. This lets variable-length strings sit inline
// ahead of binary fields in a single front-to-back scan.
func (p *Provider) ConsumeRandomLengthString(maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	out := make([]byte, 0, min(maxLength, len(p.data)))
	state := scanPlain
	for len(out) < maxLength && len(p.data) > 0 {
		c := p.data[0]
		switch state {
		case scanPlain:
			if c == escapeByte {
				state = scanSawEscape
				p.data = p.data[1:]
				continue
			}
			out = append(out, c)
			p.data = p.data[1:]
		case scanSawEscape:
			if c != escapeByte {
				return string(out)
			}
			out = append(out, escapeByte)
			p.data = p.data[1:]
			state = scanPlain
		}
	}
	return string(out)
}

// ConsumeRemainingAsRandomLengthString behaves like
// ConsumeRandomLengthString with the entire remaining length as the
// maximum. Every output byte consumes at least one buffer byte, so the
// remaining length is always a sufficient bound.
func (p *Provider) ConsumeRemainingAsRandomLengthString() string {
	return p.ConsumeRandomLengthString(len(p.data))
}
