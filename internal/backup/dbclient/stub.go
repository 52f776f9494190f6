/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

Stub is a scripted Client for tests: fixtures set the positions/version
it should return instead of talking to a real cluster.
*/
package dbclient

// Stub is an in-memory Client used by engine and integration tests.
type Stub struct {
	StartPosition string
	StopPosition  string
	Tablespaces   map[string]string
	ServerVersion string
	Started       []string // labels passed to BackupStart, in order
	Stopped       int
}

func (s *Stub) BackupStart(label string, fast bool) (string, error) {
	s.Started = append(s.Started, label)
	return s.StartPosition, nil
}

func (s *Stub) BackupStop() (string, error) {
	s.Stopped++
	return s.StopPosition, nil
}

func (s *Stub) TablespaceMap() (map[string]string, error) {
	return s.Tablespaces, nil
}

func (s *Stub) Version() (string, error) {
	return s.ServerVersion, nil
}
