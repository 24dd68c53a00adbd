package domain

// Target defines connection settings for one probed deployment (local/staging/prod).
// Secrets may be merged on top by infrastructure implementations.
type Target struct {
	Name string
	Vars Vars
}

// TargetRef is a lightweight reference to a target file on disk.
type TargetRef struct {
	Name string
	Path string
}
