// Package repair implements detection and correction of corrupted PDF text
// encodings. Corruption in malformed PDF extraction shows up as isolated
// control-range or private-use glyphs substituted for accented letters; this
// package scores that corruption, learns a statistical substitution table
// from known legacy-encoding patterns, and applies learned repair maps to
// text. All functions are pure and safe for concurrent use.
package repair
