// Package codec encodes a location's entries into slot blobs and back.
//
// Slot wire format:
//
//	record := key "=" valueFragment
//	blob   := record ("&" record)*
//
// A value that does not fit the space left in a slot is split by Trim into a
// prefix that fills the slot and a remainder that continues in the next one.
// Decode rebuilds values by appending fragments of a key in slot order.
//
// Decoding appends a fragment to any key already seen, contiguous or not.
// That is only correct because the engine always rewrites every slot of a
// location from a complete entry set; incremental slot updates would turn the
// concatenation into silent value corruption.
package codec
