// Package source acquires package index text for the parser.
//
// Two modes are supported:
//
//   - "remote" ([Remote]): downloads an APKINDEX.tar.gz archive over HTTP,
//     decompresses it and extracts the APKINDEX member. The result is parsed
//     with the structured (P:/D:) index format.
//   - "test" ([File]): reads a local file in the simple "name: dep dep"
//     format.
//
// [New] selects the implementation for a mode string. Failures carry codes
// from pkg/errors: FILE_NOT_FOUND for a missing local file, NETWORK_ERROR or
// NOT_FOUND for download failures, ARCHIVE_ERROR for a malformed archive.
package source
