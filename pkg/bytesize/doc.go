// Package bytesize estimates the byte cost of strings stored in slots.
//
// The estimate is a conservative upper bound, not an exact UTF-8 length:
// every ASCII rune costs one byte and every other rune costs a fixed wide
// cost (three by default, the width of a percent-encoded byte). Callers that
// pack data against a hard byte budget rely on the estimate never being
// lower than what the transport actually stores for ASCII content.
package bytesize
