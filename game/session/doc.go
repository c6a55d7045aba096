// Package session stores game sessions for the service layer.
//
// Manager keeps sessions in memory under case-insensitive 4-character hex
// IDs and optionally mirrors them to a SessionPersistence. FilePersistence
// writes one JSON file per session holding the engine snapshot and the
// score submission state; loading a file rebuilds the engine from the
// level descriptor with engine.Restore.
//
// Sessions idle for longer than a given age are dropped from memory by
// CleanupExpiredSessions. Their files stay on disk, so a later Get loads
// them back.
//
// Usage:
//
//	fp, err := session.NewFilePersistence("sessions", levelMgr, text)
//	manager := session.NewManagerWithPersistence(fp)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
package session
