// Package storage writes image binaries to the output directory.
//
// Files are written under a ".part" name and renamed into place, and a file
// that already exists under its final name is never overwritten:
//
//	m, err := storage.NewManager("downloads", true)
//	saved, err := m.SaveIfAbsent("abc123.jpg", data, created)
package storage
