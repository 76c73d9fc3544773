// Package document parses a rendered newsletter into an addressable tree of
// sections, links, images, and sentences that the lint rules operate on.
//
// Input may be HTML or Markdown (with optional YAML front matter); Markdown
// is converted to HTML first so both formats flow through a single extraction
// path. Parsing is tolerant: stray tags, entities, and ill-formed bytes are
// normalized rather than rejected. The only hard failure is input in which no
// headings can be located at all, which is reported as a
// MalformedDocumentError.
package document
