// Package document renders single pages of generated documents to bitmaps.
//
// Supported document kinds:
//
//   - [KindDOT]: Graphviz DOT graphs, rendered in process with go-graphviz.
//     A DOT document has exactly one page.
//   - [KindPDF]: PDF reports, rendered with Ghostscript (gs).
//
// Pages are zero-based. Requesting a page the document does not have fails
// with code INVALID_PAGE. Rendered pages are flattened onto white so they are
// opaque, like a printed page.
//
// [ExportPage] renders a page and writes it to a file in the format implied
// by the file extension:
//
//	doc, _ := document.Open("report.pdf")
//	err := document.ExportPage(ctx, document.NewDispatcher(), doc, 0, "page1.png")
package document
