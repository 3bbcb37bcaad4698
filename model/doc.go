// Package model holds the plain data that travels alongside the converted
// text: document metadata read from the package properties and the images
// referenced by figure placements.
//
// # Metadata
//
// [Metadata] mirrors the Dublin Core fields of docProps/core.xml. Its
// [Metadata.Values] map feeds the header block and output templates:
//
//	md := model.NewMetadata()
//	md.Title = "Annual Report"
//	md.Values()["title"] // "Annual Report"
//
// # Images
//
// An [Image] is the payload of one word/media member. Figure placements
// refer to images by [Image.Name]; the bytes are handed to the caller
// unchanged so they can be written next to the output file.
package model
