package ports

// ProbeLocator finds a mindprobe directory root starting from an arbitrary directory.
type ProbeLocator interface {
	FindRoot(startDir string) (string, error)
}
