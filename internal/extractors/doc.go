// Package extractors turns document files into raw text.
//
// The Registry picks an extractor by file extension: PDFs go through
// pdftotext, DOCX, HTML and Markdown files are converted in process, and
// anything else is read as UTF-8 text. Extracted text is trimmed, and a
// document with no remaining text is an extraction failure.
package extractors
