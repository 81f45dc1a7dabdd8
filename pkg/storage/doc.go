// Package storage provides key/value backends for platform storage areas.
//
// A Backend stores string values by key. Backends that can observe writes
// made by other processes also implement Watcher; the storage area turns
// those notifications into storage events, the same way a browser reports
// writes made by another tab.
//
//	mem := storage.NewMemory()
//	file, err := storage.NewFile("prefs.json")
//	s3b := storage.NewS3(client, "my-bucket", "prefs/")
package storage
