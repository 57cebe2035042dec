// Package richtext renders the site's lightweight content dialect into HTML
// fragments.
//
// The dialect is line oriented. Block constructs occupy whole lines:
//
//	# Heading 1
//	## Heading 2
//	### Heading 3
//	> quoted line
//	* unordered item   (also "-" and "•")
//	1. ordered item
//
// Consecutive list items of the same kind form one list, every quote line
// is its own quote, and any other non-blank lines form paragraphs whose
// line breaks are preserved with <br>. Inside block text the inline
// constructs are `code`, [label](url), **bold** / __bold__ and
// *italic* / _italic_.
//
// Rendering happens in two phases. Lines are first classified and grouped
// into blocks, then each leaf text is run through an inline scanner that
// masks code spans before any other delimiter is considered, so code content
// is never reinterpreted. Rendering never fails: anything the scanner does
// not recognise is emitted as paragraph text.
//
// # Escaping
//
// The default policy (EscapeHTML) escapes all source text and only emits the
// fixed set of tags listed above. LegacyPassthrough inserts source text
// verbatim, which matches the legacy site renderer and must only
// be used with trusted, admin-authored content.
//
// Output is a fragment: it never contains a document root, <html>, <head> or
// <script> wrapper. Render is not idempotent; rendering already rendered
// output escapes the tags produced by the first pass.
package richtext
