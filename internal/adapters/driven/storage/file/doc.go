// Package file provides filesystem adapters for corpus metadata and result artifacts.
//
// Adapters:
//   - MetadataSource: papers.json (or papers.yaml) plus a parsed-text directory
//   - ResultStore: novelty result lists and plagiarism reports as indented JSON
package file
