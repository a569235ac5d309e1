// Package shape implements the text-processing core of an OpenType
// shaping engine: it walks a stream of glyphs under the discipline of
// a compiled lookup Pattern, rewriting it (GSUB) and then positioning
// it (GPOS).
//
// The three tightly coupled pieces are the Locator (a filtering cursor
// over the Album), the GSUB applier (eight substitution lookup types)
// and the GPOS applier (nine positioning lookup types, including the
// shared contextual/chained-contextual matcher). Everything else —
// script-specific shaping tables, the feature-tag compiler, font
// parsing, BiDi, line breaking, normalization — is a collaborator this
// package consumes through narrow interfaces, never something it
// implements itself.
package shape
