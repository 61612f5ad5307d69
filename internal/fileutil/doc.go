// Package fileutil finds the files a rename plan operates on.
//
// # Scanning
//
// Scan walks a directory (optionally recursively) and returns a
// models.FileDescriptor snapshot for every regular file that passes the
// filters:
//   - Keyword: substring match against the base name, or against the path
//     relative to the root when MatchPath is set
//   - Extensions: case-insensitive extension filter (".jpg", "JPG", ...)
//   - IncludeHidden: dot-files and dot-directories are skipped unless set
//   - IgnoreDirs: directory names never entered (.git, node_modules, ...)
//
// Symlinks and other non-regular entries are never returned, and neither
// are files carrying the executor's temporary-name marker, so a scan never
// proposes to rename a file stranded by an interrupted run.
//
// Scan is error tolerant: unreadable subdirectories and files that vanish
// mid-walk are collected in ScanResult.Errors and the walk continues. Only a
// missing root, a root that is not a directory or a cancelled context abort
// the scan.
//
// Results are sorted by path so that repeated scans of the same tree
// produce identical plans.
//
// # Directory listings
//
// ListSuffixes reports the distinct extensions of a directory for the
// sequence command. OSLister lists every entry name of a directory and is
// the planner's view of names already occupied on disk.
package fileutil
